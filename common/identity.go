// Package common holds the pieces shared between the chat backend and the
// HR system that embeds it: the employee-to-chat-user identity mapping and
// the deterministic provisioning credentials.
package common

import (
	"fmt"
	"strconv"
	"strings"
)

// Chat user id prefixes. Employees are provisioned as emp_{employeeId};
// system actors (announcement bots, workflow robots) as bot_{name}.
const (
	EmployeePrefix = "emp_"
	BotPrefix      = "bot_"
)

// ChatUserId maps an HR employee id to its chat user id
func ChatUserId(employeeId int64) string {
	return fmt.Sprintf("%s%d", EmployeePrefix, employeeId)
}

// BotUserId maps a system actor name to its chat user id
func BotUserId(name string) string {
	return BotPrefix + name
}

// EmployeeId recovers the HR employee id from a chat user id. Returns false
// for bot users and ids minted outside the provisioning scheme.
func EmployeeId(chatUserId string) (int64, bool) {
	if !strings.HasPrefix(chatUserId, EmployeePrefix) {
		return 0, false
	}
	id, err := strconv.ParseInt(chatUserId[len(EmployeePrefix):], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// IsEmployee reports whether the chat user id belongs to a provisioned
// employee
func IsEmployee(chatUserId string) bool {
	_, ok := EmployeeId(chatUserId)
	return ok
}

// IsBot reports whether the chat user id belongs to a system actor
func IsBot(chatUserId string) bool {
	return strings.HasPrefix(chatUserId, BotPrefix) && len(chatUserId) > len(BotPrefix)
}
