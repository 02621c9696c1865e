package httphandler

import (
	"github.com/orbit-network/launchpad-engine/modules/launchpad/distributor"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/exporter"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/usecase"
)

type HttpHandler struct {
	usecase *usecase.Usecase
	engine  *distributor.Engine
	// optional, nil when the exporter is disabled
	exporter *exporter.Exporter
}

func New(usecase *usecase.Usecase, engine *distributor.Engine, exporter *exporter.Exporter) *HttpHandler {
	return &HttpHandler{
		usecase:  usecase,
		engine:   engine,
		exporter: exporter,
	}
}

type HttpResponse[T any] struct {
	Error  *string `json:"error"`
	Result *T      `json:"result,omitempty"`
}
