package queue

import (
	config "github.com/contentpassport/pimtrack/configs"
	"github.com/contentpassport/pimtrack/internal/service"
)

type Queue struct {
	cfg config.Config
	pim service.PIMService
	ar  *service.ArchiveService
}

func NewQueue(cfg config.Config, pim service.PIMService, ar *service.ArchiveService) *Queue {
	return &Queue{
		cfg: cfg,
		pim: pim,
		ar:  ar,
	}
}

const (
	TaskTypePIMRecalc    = "pim:recalculate"
	TaskTypeMediaArchive = "media:archive"
)

type PIMRecalcPayload struct {
	PassportID int64 `json:"passport_id"`
	Epoch      int   `json:"epoch,omitempty"`
}

type MediaArchivePayload struct {
	TrackedPostID int64 `json:"tracked_post_id"`
}
