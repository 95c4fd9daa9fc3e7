package main

import (
	"github.com/osiro/laudo/internal/command"
	"github.com/osiro/laudo/internal/command/serve"
	"github.com/osiro/laudo/internal/command/warm"
)

func main() {
	command.Main(
		"laudo",
		"Document rendering and public sharing for field service work",
		serve.Command(),
		warm.Command(),
	)
}
