package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskFileCleanup removes a stored attachment file whose inline delete failed.
const TaskFileCleanup = "storage.file_cleanup"

type FileCleanupPayload struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

func NewFileCleanupTask(payload FileCleanupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFileCleanup, data), nil
}

func ParseFileCleanupPayload(task *asynq.Task) (FileCleanupPayload, error) {
	var payload FileCleanupPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return FileCleanupPayload{}, err
	}
	return payload, nil
}

// fileCleanupTaskID deduplicates cleanups of the same object while one is pending.
func fileCleanupTaskID(p FileCleanupPayload) string {
	return "file-cleanup:" + p.Bucket + "/" + p.Key
}
