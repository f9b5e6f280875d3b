package janitor

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"reelsmith/config"
	"reelsmith/store"
	"reelsmith/types"
	"reelsmith/videogen"
)

// Janitor runs periodic maintenance: reconciling stale pending videos against
// the provider and pruning old staged files.
type Janitor struct {
	store *store.Store
	gen   *videogen.Client
	cron  *cron.Cron
}

// New creates a janitor.
func New(st *store.Store, gen *videogen.Client) *Janitor {
	return &Janitor{
		store: st,
		gen:   gen,
		cron:  cron.New(),
	}
}

// Start schedules the maintenance jobs and starts the cron runner.
func (j *Janitor) Start(schedule string) error {
	if _, err := j.cron.AddFunc(schedule, func() {
		ctx := context.Background()
		if err := j.ReconcilePending(ctx); err != nil {
			log.Printf("janitor: reconcile error: %v", err)
		}
		if err := j.CleanTempFiles(); err != nil {
			log.Printf("janitor: temp cleanup error: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}
	j.cron.Start()
	log.Printf("janitor: started (schedule %q)", schedule)
	return nil
}

// Stop halts the cron runner and waits for running jobs.
func (j *Janitor) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
}

// ReconcilePending re-queries the provider for pending videos whose last
// update is older than the stale window. Finished tasks are recorded;
// tasks the provider reports failed are marked failed.
func (j *Janitor) ReconcilePending(ctx context.Context) error {
	cutoff := time.Now().Add(-config.StalePendingAfter)
	stale, err := j.store.ListStalePending(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list stale pending: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}
	log.Printf("janitor: reconciling %d stale pending videos", len(stale))

	for _, v := range stale {
		status, err := j.gen.QueryTask(ctx, v.RemoteTaskID)
		if err != nil {
			log.Printf("janitor: query task %s failed: %v", v.RemoteTaskID, err)
			continue
		}

		switch {
		case status.Succeeded() && status.VideoURL != "":
			completed := types.VideoCompleted
			if _, err := j.store.UpdateVideo(ctx, v.ID, store.VideoUpdate{
				Status:   &completed,
				VideoURL: &status.VideoURL,
			}); err != nil {
				log.Printf("janitor: update video %d failed: %v", v.ID, err)
				continue
			}
			log.Printf("janitor: video %d recovered as completed", v.ID)
		case status.Done():
			failed := types.VideoFailed
			msg := status.Error
			if msg == "" {
				msg = "task failed"
			}
			if _, err := j.store.UpdateVideo(ctx, v.ID, store.VideoUpdate{
				Status: &failed,
				Error:  &msg,
			}); err != nil {
				log.Printf("janitor: update video %d failed: %v", v.ID, err)
				continue
			}
			log.Printf("janitor: video %d marked failed: %s", v.ID, msg)
		default:
			// Still running; bump updated_at so it drops out of the stale window.
			if _, err := j.store.UpdateVideo(ctx, v.ID, store.VideoUpdate{}); err != nil {
				log.Printf("janitor: touch video %d failed: %v", v.ID, err)
			}
		}
	}
	return nil
}

// CleanTempFiles removes staged artifacts older than the retention window.
func (j *Janitor) CleanTempFiles() error {
	cutoff := time.Now().Add(-config.TempRetention)
	var removed int

	for _, dir := range []string{config.AudioDir, config.VideoDir, config.ProcessedDir} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			if info.ModTime().After(cutoff) {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if err := os.Remove(path); err != nil {
				log.Printf("janitor: remove %s failed: %v", path, err)
				continue
			}
			removed++
		}
	}
	if removed > 0 {
		log.Printf("janitor: removed %d expired temp files", removed)
	}
	return nil
}
