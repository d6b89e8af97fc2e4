package queue

import (
	"context"
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"
)

func (j *Queue) HandlePIMRecalcTask(ctx context.Context, task *asynq.Task) error {
	var payload PIMRecalcPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	epoch := payload.Epoch
	if epoch <= 0 {
		epoch = j.cfg.CurrentEpoch
	}

	result, err := j.pim.CalculatePIM(ctx, payload.PassportID, epoch)
	if err != nil {
		log.Printf("Error recalculating PIM for passport %d: %v", payload.PassportID, err)
		return err
	}

	log.Printf("Recalculated PIM for passport %d epoch %d: %.4f", result.PassportID, result.Epoch, result.TotalPIM)
	return nil
}

func (j *Queue) HandleMediaArchiveTask(ctx context.Context, task *asynq.Task) error {
	var payload MediaArchivePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	if err := j.ar.ArchivePostMedia(ctx, payload.TrackedPostID); err != nil {
		log.Printf("Error archiving media for post %d: %v", payload.TrackedPostID, err)
		return err
	}

	return nil
}
