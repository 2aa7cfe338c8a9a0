package postgres

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/stride-sync/internal/core/domain"
)

func TestUpsertActivitySQL(t *testing.T) {
	assert.Contains(t, upsertActivitySQL, "ON CONFLICT (external_activity_id) DO UPDATE SET")
	assert.True(t, strings.HasSuffix(upsertActivitySQL, "WHERE activities.user_id = EXCLUDED.user_id"))
	assert.Contains(t, upsertActivitySQL, fmt.Sprintf("$%d)", len(activityColumns)))

	for _, kept := range []string{"id", "user_id", "external_activity_id", "created_at"} {
		assert.NotContains(t, upsertActivitySQL, " "+kept+" = EXCLUDED."+kept)
	}
	assert.Contains(t, upsertActivitySQL, "estimated_calories = EXCLUDED.estimated_calories")
}

func TestActivityArgsMatchColumns(t *testing.T) {
	args := activityArgs(&domain.Activity{Category: domain.ActivityTypeRide})
	assert.Len(t, args, len(activityColumns))
	assert.Equal(t, "ride", args[6])
}

func TestHashLockNameIsStable(t *testing.T) {
	assert.Equal(t, hashLockName("import:user-1"), hashLockName("import:user-1"))
	assert.NotEqual(t, hashLockName("import:user-1"), hashLockName("import:user-2"))
}
