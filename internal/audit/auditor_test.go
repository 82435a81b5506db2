package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rhystmorgan/phonebook/internal/models"
)

func TestAuditorRecordsAndReadsHistory(t *testing.T) {
	a, err := NewAuditor(t.TempDir())
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.Record(ActionCreate, "c1", map[string]string{"phone": "555"}))
	require.NoError(t, a.Record(ActionDelete, "c2", nil))
	require.NoError(t, a.RecordChange(
		models.Contact{ID: "c1", FirstName: "Ada", Phone: "555"},
		models.Contact{ID: "c1", FirstName: "Ada", LastName: "Lovelace", Phone: "555"},
	))

	history, err := a.History("c1")
	require.NoError(t, err)
	require.Len(t, history, 2)

	assert.Equal(t, ActionCreate, history[0].Action)
	assert.Equal(t, "555", history[0].Details["phone"])
	assert.NotEmpty(t, history[0].ID)

	assert.Equal(t, ActionUpdate, history[1].Action)
	assert.Equal(t, map[string]Change{"last_name": {NewValue: "Lovelace"}}, history[1].Changes)
}

func TestAuditorSkipsEmptyChanges(t *testing.T) {
	a, err := NewAuditor(t.TempDir())
	require.NoError(t, err)
	defer a.Close()

	c := models.Contact{ID: "c1", FirstName: "Ada"}
	require.NoError(t, a.RecordChange(c, c))

	history, err := a.History("c1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestAuditorFlushesWhenBatchIsFull(t *testing.T) {
	a, err := NewAuditor(t.TempDir())
	require.NoError(t, err)
	defer a.Close()

	for i := 0; i < defaultBatchSize; i++ {
		require.NoError(t, a.Record(ActionCreate, "c1", nil))
	}

	a.batchMu.Lock()
	pending := len(a.batch)
	a.batchMu.Unlock()
	assert.Zero(t, pending)
	assert.FileExists(t, a.LogFile())
}

func TestNilAuditorIsANoop(t *testing.T) {
	var a *Auditor
	assert.NoError(t, a.Record(ActionCreate, "c1", nil))
	assert.NoError(t, a.RecordChange(models.Contact{}, models.Contact{FirstName: "x"}))
	assert.NoError(t, a.Flush())
	assert.NoError(t, a.Close())
}
