package cronmanager

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadJobs(t *testing.T) {
	cm := NewCronManager(JobRegistry{
		"submissions_clean": {Func: func() {}, Schedule: "0 3 * * *"},
		"broken":            {Func: func() {}, Schedule: "every day"},
		"empty":             {Schedule: "* * * * *"},
	})

	assert.Error(t, cm.LoadJobs())
	assert.Equal(t, []string{"submissions_clean"}, cm.Jobs())

	// повторная загрузка не дублирует задачи
	cm.LoadJobs()
	assert.Len(t, cm.Jobs(), 1)

	cm.RemoveJob("submissions_clean")
	assert.Empty(t, cm.Jobs())

	cm.Start()
	cm.Stop()
}
