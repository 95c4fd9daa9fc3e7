package metrics

const Namespace = "laudo"

const (
	LabelKind   = "kind"
	LabelResult = "result"
)
