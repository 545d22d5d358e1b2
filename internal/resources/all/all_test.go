package all

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryHasEveryResource(t *testing.T) {
	reg, err := Registry()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"accounts", "companyrequests", "courses", "employees", "payments",
		"pointoptions", "pointrequests", "revisions", "serviceprices",
	}, reg.Names())

	for _, b := range reg.All() {
		assert.NotEmpty(t, b.Title(), b.Name())
		assert.NotEmpty(t, b.Columns(), b.Name())
		assert.NotEmpty(t, b.Statuses(), b.Name())
		assert.NotEmpty(t, b.ActionKeys(), b.Name())
	}
}

func TestReviewQueues(t *testing.T) {
	var queues []string
	for _, b := range Bindings() {
		if _, ok := b.PendingQuery(); ok {
			queues = append(queues, b.Name())
		}
	}
	assert.Equal(t, []string{"payments", "pointrequests", "companyrequests", "revisions"}, queues)
}
