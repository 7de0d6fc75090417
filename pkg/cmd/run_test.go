// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"os"
	"strings"
	"testing"

	"github.com/cgen-tool/cgen/pkg/diag"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoadConfigErrorsWithoutAConfigFile(t *testing.T) {
	chdir(t, t.TempDir())

	printer := diag.NewPrinter(os.Stderr, false)
	_, _, err := loadConfig(printer)
	if err == nil || !strings.Contains(err.Error(), "cgen.yml") {
		t.Fatalf("expected a cgen.yml-not-found error, got %v", err)
	}
}

func TestRunWithoutModeFlagsFails(t *testing.T) {
	o := NewDefaultOptions()
	if err := o.Run(nil); err == nil {
		t.Fatalf("expected an error when neither -g nor -u was given")
	}
}
