package common

import "testing"

func TestChatUserIdRoundTrip(t *testing.T) {
	id := ChatUserId(42)
	if id != "emp_42" {
		t.Fatalf("unexpected chat user id: %s", id)
	}

	empId, ok := EmployeeId(id)
	if !ok || empId != 42 {
		t.Fatalf("round trip failed: got %d, %v", empId, ok)
	}
}

func TestEmployeeIdRejectsNonEmployees(t *testing.T) {
	for _, id := range []string{"bot_announcer", "emp_", "emp_abc", "emp_-1", "alice", ""} {
		if _, ok := EmployeeId(id); ok {
			t.Errorf("id %q should not resolve to an employee", id)
		}
	}
}

func TestIsBot(t *testing.T) {
	if !IsBot(BotUserId("announcer")) {
		t.Error("bot id should be recognized")
	}
	if IsBot("bot_") {
		t.Error("empty bot name should not be recognized")
	}
	if IsBot("emp_42") {
		t.Error("employee id is not a bot")
	}
}

func TestProvisionPasswordDeterministic(t *testing.T) {
	a := ProvisionPassword("emp_42", "secret")
	b := ProvisionPassword("emp_42", "secret")
	if a != b {
		t.Fatal("provision password must be deterministic")
	}
	if len(a) != 32 {
		t.Fatalf("unexpected password length: %d", len(a))
	}

	if ProvisionPassword("emp_42", "other") == a {
		t.Error("different secrets must derive different passwords")
	}
	if ProvisionPassword("emp_43", "secret") == a {
		t.Error("different users must derive different passwords")
	}

	if !VerifyProvisionPassword("emp_42", "secret", a) {
		t.Error("verify should accept the derived password")
	}
	if VerifyProvisionPassword("emp_42", "secret", "nope") {
		t.Error("verify should reject a wrong password")
	}
}
