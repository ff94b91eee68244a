package service

import (
	"bytes"
	"testing"

	"github.com/ludo-technologies/vibescan/domain"
)

func TestNewProgressManager_Disabled(t *testing.T) {
	pm := NewProgressManager(false)
	if pm.IsInteractive() {
		t.Error("Expected a non-interactive manager when progress is disabled")
	}

	task := pm.StartTask("Extracting metrics", 10)
	task.Increment(3)
	task.Describe("still extracting")
	task.Complete()
	pm.Close()
}

func TestProgressManager_RendersToWriter(t *testing.T) {
	var buf bytes.Buffer
	pm := NewProgressManagerWithWriter(&buf)

	task := pm.StartTask("Extracting metrics", 4)
	for i := 0; i < 4; i++ {
		task.Increment(1)
	}
	task.Complete()
	pm.Close()

	if !pm.IsInteractive() {
		t.Error("Expected a bar-rendering manager to be interactive")
	}
	if buf.Len() == 0 {
		t.Error("Expected progress output to be written")
	}
}

func TestProgressManager_Interfaces(t *testing.T) {
	var _ domain.ProgressManager = &ProgressManagerImpl{}
	var _ domain.ProgressManager = &NoOpProgressManager{}
	var _ domain.TaskProgress = &TaskProgressImpl{}
	var _ domain.TaskProgress = noOpTaskProgress{}
}
