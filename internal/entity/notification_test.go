package entity

import (
	"testing"

	"github.com/openhrm/pulse/pkg/constant"
	"github.com/stretchr/testify/assert"
)

func TestNotification_HasValidType(t *testing.T) {
	for _, typ := range constant.NotificationTypes {
		n := Notification{Type: typ}
		assert.True(t, n.HasValidType(), "type %q should be accepted", typ)
	}

	// The enumeration is closed: free-form values observed drifting in the
	// old system must be rejected at the boundary.
	for _, typ := range []string{"", "Task", "payroll", "task ", "general"} {
		n := Notification{Type: typ}
		assert.False(t, n.HasValidType(), "type %q should be rejected", typ)
	}
}
