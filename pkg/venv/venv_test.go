package venv

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	apperrors "github.com/stanza-dev/stanza/pkg/errors"
	"github.com/stanza-dev/stanza/pkg/lockfile"
)

// fakeVenv creates a directory shaped like a virtualenv, with an
// interpreter file present so Exists() passes.
func fakeVenv(t *testing.T) *VirtualEnv {
	t.Helper()
	dir := t.TempDir()
	binDir := filepath.Join(dir, "bin")
	python := filepath.Join(binDir, "python")
	if runtime.GOOS == "windows" {
		binDir = filepath.Join(dir, "Scripts")
		python = filepath.Join(binDir, "python.exe")
	}
	if err := os.MkdirAll(binDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(python, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}
	return New(dir)
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestVirtualEnv_Exists(t *testing.T) {
	if !fakeVenv(t).Exists() {
		t.Error("Exists() = false for populated venv, want true")
	}

	if New(t.TempDir()).Exists() {
		t.Error("Exists() = true for empty dir, want false")
	}
}

func TestVirtualEnv_Stamp(t *testing.T) {
	env := fakeVenv(t)

	first, err := env.Stamp()
	if err != nil {
		t.Fatalf("Stamp failed: %v", err)
	}
	again, err := env.Stamp()
	if err != nil {
		t.Fatalf("Stamp failed: %v", err)
	}
	if first != again {
		t.Error("Stamp is not stable for an untouched venv")
	}

	// A fresh interpreter file means a fresh stamp.
	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(env.Python(), later, later); err != nil {
		t.Fatal(err)
	}
	fresh, err := env.Stamp()
	if err != nil {
		t.Fatalf("Stamp failed: %v", err)
	}
	if fresh == first {
		t.Error("Stamp unchanged after interpreter replacement")
	}

	if _, err := New(t.TempDir()).Stamp(); !apperrors.Is(err, apperrors.ErrCodeVenvNotFound) {
		t.Errorf("error code = %v, want %v", apperrors.GetCode(err), apperrors.ErrCodeVenvNotFound)
	}
}

func TestInstaller_Install(t *testing.T) {
	env := fakeVenv(t)

	var commands [][]string
	inst := NewInstaller(discardLogger())
	inst.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		commands = append(commands, append([]string{name}, args...))
		return nil, nil
	}

	packages := []*lockfile.Package{
		{Name: "urllib3", Version: "2.2.1"},
		{Name: "requests", Version: "2.31.0"},
		{Name: "urllib3", Version: "2.2.1"}, // merged closures may repeat
	}

	if err := inst.Install(context.Background(), env, packages); err != nil {
		t.Fatalf("Install failed: %v", err)
	}

	if len(commands) != 3 {
		t.Fatalf("ran %d commands, want 3", len(commands))
	}

	first := commands[0]
	if first[0] != env.Python() {
		t.Errorf("command[0] = %q, want %q", first[0], env.Python())
	}
	wantArgs := []string{"-m", "pip", "install", "--no-deps", "urllib3==2.2.1"}
	for i, arg := range wantArgs {
		if first[i+1] != arg {
			t.Errorf("args[%d] = %q, want %q", i, first[i+1], arg)
		}
	}
	if commands[1][len(commands[1])-1] != "requests==2.31.0" {
		t.Errorf("second install = %q, want requests==2.31.0", commands[1][len(commands[1])-1])
	}
}

func TestInstaller_InstallFailure(t *testing.T) {
	env := fakeVenv(t)

	inst := NewInstaller(discardLogger())
	inst.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte("ERROR: No matching distribution"), errors.New("exit status 1")
	}

	err := inst.Install(context.Background(), env, []*lockfile.Package{{Name: "ghost", Version: "1.0.0"}})
	if !apperrors.Is(err, apperrors.ErrCodeInstallFailed) {
		t.Errorf("error code = %v, want %v", apperrors.GetCode(err), apperrors.ErrCodeInstallFailed)
	}
}

func TestInstaller_MissingVenv(t *testing.T) {
	inst := NewInstaller(discardLogger())
	err := inst.Install(context.Background(), New(t.TempDir()), nil)
	if !apperrors.Is(err, apperrors.ErrCodeVenvNotFound) {
		t.Errorf("error code = %v, want %v", apperrors.GetCode(err), apperrors.ErrCodeVenvNotFound)
	}
}
