package db

import (
	"errors"
	"testing"
)

func TestError_WrapsOp(t *testing.T) {
	err := &Error{Op: OpInsert, Err: ErrKeyExists}

	if err.Error() != "INSERT: db: key already exists" {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if !errors.Is(err, ErrKeyExists) {
		t.Error("expected errors.Is to unwrap to ErrKeyExists")
	}
}
