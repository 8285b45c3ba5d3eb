package domain

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
)

func TestParsePhase(t *testing.T) {
	for _, valid := range []string{"new", "onboarding", "gathering_preferences", "active", "available_tonight"} {
		if _, err := ParsePhase(valid); err != nil {
			t.Fatalf("ParsePhase(%q) failed: %v", valid, err)
		}
	}
	if _, err := ParsePhase("matched"); err == nil {
		t.Fatalf("ParsePhase accepted an unknown phase")
	}
}

func TestContextMergeTypedFields(t *testing.T) {
	step := 2
	c := Context{OnboardingStep: &step, LastSummary: "old"}

	err := c.Merge(map[string]any{
		"onboarding_step": 3,
		"questions_asked": []string{"What do you value most?"},
	})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if c.OnboardingStep == nil || *c.OnboardingStep != 3 {
		t.Fatalf("onboarding_step not overwritten: %v", c.OnboardingStep)
	}
	if len(c.QuestionsAsked) != 1 {
		t.Fatalf("questions_asked not applied: %v", c.QuestionsAsked)
	}
	// Absent keys keep their value.
	if c.LastSummary != "old" {
		t.Fatalf("last_summary changed without an update: %q", c.LastSummary)
	}
}

func TestContextMergeUnknownKeysLandInExtra(t *testing.T) {
	var c Context
	if err := c.Merge(map[string]any{"favorite_food": "ramen"}); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if c.Extra["favorite_food"] != "ramen" {
		t.Fatalf("unknown key not captured: %v", c.Extra)
	}
}

func TestContextMergeExtraIsBounded(t *testing.T) {
	var c Context
	updates := make(map[string]any, maxExtraKeys+10)
	for i := 0; i < maxExtraKeys+10; i++ {
		updates[fmt.Sprintf("key_%03d", i)] = i
	}
	if err := c.Merge(updates); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if len(c.Extra) != maxExtraKeys {
		t.Fatalf("Extra grew to %d entries, cap is %d", len(c.Extra), maxExtraKeys)
	}

	// Overwriting an existing key still works at the cap.
	var existing string
	for k := range c.Extra {
		existing = k
		break
	}
	if err := c.Merge(map[string]any{existing: "updated"}); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if c.Extra[existing] != "updated" {
		t.Fatalf("existing Extra key not overwritten at cap")
	}
}

func TestContextMergeRejectsUncoercibleUpdate(t *testing.T) {
	var c Context
	err := c.Merge(map[string]any{"questions_asked": map[string]any{"not": "a list"}})
	if err == nil {
		t.Fatalf("Merge accepted an uncoercible update")
	}
}

func TestNewConversationState(t *testing.T) {
	userID := uuid.New()
	state := NewConversationState(userID)
	if state.UserID != userID || state.CurrentState != PhaseNew {
		t.Fatalf("unexpected initial state: %+v", state)
	}
}
