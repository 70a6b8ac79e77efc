package domain_test

import (
	"testing"
	"time"

	"github.com/abdidvp/slopwatch/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestSubject_Key(t *testing.T) {
	f := domain.FileSubject("/src/./app.py")
	w := domain.WorkspaceSubject("/src/")
	assert.Equal(t, "file:/src/app.py", f.Key())
	assert.Equal(t, "workspace:/src", w.Key())
	assert.NotEqual(t, domain.FileSubject("/src").Key(), w.Key())
}

func TestAnalysisRequest_Cancel(t *testing.T) {
	req := domain.NewAnalysisRequest(domain.FileSubject("/a.py"), domain.TriggerManual, time.Now())
	assert.NotEmpty(t, req.ID)
	assert.False(t, req.Cancelled())

	req.Cancel()
	req.Cancel()
	assert.True(t, req.Cancelled())
	select {
	case <-req.Done():
	default:
		t.Fatal("Done should be closed after Cancel")
	}
}

func TestAnalysisRequest_UniqueIDs(t *testing.T) {
	a := domain.NewAnalysisRequest(domain.FileSubject("/a.py"), domain.TriggerSave, time.Now())
	b := domain.NewAnalysisRequest(domain.FileSubject("/a.py"), domain.TriggerSave, time.Now())
	assert.NotEqual(t, a.ID, b.ID)
}

func TestTriggerKind_Automatic(t *testing.T) {
	assert.True(t, domain.TriggerSave.Automatic())
	assert.True(t, domain.TriggerChange.Automatic())
	assert.False(t, domain.TriggerManual.Automatic())
	assert.False(t, domain.TriggerWorkspace.Automatic())
}
