package services

import (
	"github.com/statflow/listrelay/config"
	"github.com/statflow/listrelay/interfaces"
	"github.com/statflow/listrelay/internal/logger"
	"github.com/statflow/listrelay/services/dedup"
	"github.com/statflow/listrelay/services/extractor"
	"github.com/statflow/listrelay/services/forwarder"
	"github.com/statflow/listrelay/services/normalizer"
)

type Services struct {
	NormalizerService interfaces.NormalizerService
	ExtractorService  interfaces.ExtractorService
	DedupService      interfaces.DedupService
	ForwarderService  interfaces.ForwarderService
}

func InitServices(cfg *config.Config, log logger.Logger) *Services {
	return &Services{
		NormalizerService: normalizer.NewNormalizerService(),
		ExtractorService:  extractor.NewExtractorService(cfg.ExtractorConfig),
		DedupService:      dedup.NewDedupService(cfg.DedupConfig),
		ForwarderService:  forwarder.NewForwarderService(cfg.GA4Config, cfg.ForwarderConfig, log),
	}
}
