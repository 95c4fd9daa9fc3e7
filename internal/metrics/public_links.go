package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	NamePublicLinksIssued     = "public_links_issued_total"
	NamePublicLinksRevoked    = "public_links_revoked_total"
	NamePublicLinkValidations = "public_link_validations_total"
)

var PublicLinksIssued = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      NamePublicLinksIssued,
		Help:      "Public links issued",
		Namespace: Namespace,
	},
	[]string{LabelKind},
)

var PublicLinksRevoked = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      NamePublicLinksRevoked,
		Help:      "Public links revoked",
		Namespace: Namespace,
	},
	[]string{LabelKind},
)

var PublicLinkValidations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      NamePublicLinkValidations,
		Help:      "Public link validation attempts",
		Namespace: Namespace,
	},
	[]string{LabelKind, LabelResult},
)
