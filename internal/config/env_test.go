// Copyright (c) 2026 crashwatch authors
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import "testing"

func TestParseString_UsesEnvironmentWhenSet(t *testing.T) {
	t.Setenv("CRASHWATCH_TEST_STRING", "from-env")
	if got := ParseString("CRASHWATCH_TEST_STRING", "default"); got != "from-env" {
		t.Errorf("ParseString = %q, want from-env", got)
	}
}

func TestParseString_FallsBackWhenUnsetOrEmpty(t *testing.T) {
	if got := ParseString("CRASHWATCH_TEST_STRING_UNSET", "default"); got != "default" {
		t.Errorf("ParseString = %q, want default", got)
	}
	t.Setenv("CRASHWATCH_TEST_STRING_EMPTY", "")
	if got := ParseString("CRASHWATCH_TEST_STRING_EMPTY", "default"); got != "default" {
		t.Errorf("ParseString on empty env var = %q, want default", got)
	}
}

func TestParseFloat_ValidAndInvalid(t *testing.T) {
	t.Setenv("CRASHWATCH_TEST_FLOAT", "2.5")
	if got := ParseFloat("CRASHWATCH_TEST_FLOAT", 1.0); got != 2.5 {
		t.Errorf("ParseFloat = %v, want 2.5", got)
	}

	t.Setenv("CRASHWATCH_TEST_FLOAT_BAD", "not-a-number")
	if got := ParseFloat("CRASHWATCH_TEST_FLOAT_BAD", 1.0); got != 1.0 {
		t.Errorf("ParseFloat on unparseable value = %v, want default 1.0", got)
	}
}

func TestParseInt_ValidAndInvalid(t *testing.T) {
	t.Setenv("CRASHWATCH_TEST_INT", "42")
	if got := ParseInt("CRASHWATCH_TEST_INT", 7); got != 42 {
		t.Errorf("ParseInt = %v, want 42", got)
	}

	t.Setenv("CRASHWATCH_TEST_INT_BAD", "abc")
	if got := ParseInt("CRASHWATCH_TEST_INT_BAD", 7); got != 7 {
		t.Errorf("ParseInt on unparseable value = %v, want default 7", got)
	}
}

func TestParseBool_ValidAndInvalid(t *testing.T) {
	t.Setenv("CRASHWATCH_TEST_BOOL", "true")
	if got := ParseBool("CRASHWATCH_TEST_BOOL", false); got != true {
		t.Errorf("ParseBool = %v, want true", got)
	}

	t.Setenv("CRASHWATCH_TEST_BOOL_BAD", "sorta")
	if got := ParseBool("CRASHWATCH_TEST_BOOL_BAD", false); got != false {
		t.Errorf("ParseBool on unparseable value = %v, want default false", got)
	}
}
