// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package emit

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cgen-tool/cgen/pkg/config"
)

func TestEmitShorthandProjectProducesBareProjectLine(t *testing.T) {
	cfg := config.Config{Project: config.ProjectHeader{Name: "myapp"}}

	var buf bytes.Buffer
	if err := Emit(cfg, &buf); err != nil {
		t.Fatalf("emit: %v", err)
	}

	if !strings.Contains(buf.String(), "project(myapp)\n") {
		t.Fatalf("expected bare project line, got:\n%s", buf.String())
	}
}

func TestEmitIsDeterministicAcrossRuns(t *testing.T) {
	cfg := config.Config{
		Project: config.ProjectHeader{Name: "myapp", Version: config.Expression{Value: "1.0", Defined: true}},
		Options: []config.Option{{Name: "BUILD_TESTS", Description: "enable tests", Default: config.Expression{Value: "ON", Defined: true}}},
		SettingOrder: []string{"CMAKE_CXX_STANDARD"},
		Settings:     map[string]config.Expression{"CMAKE_CXX_STANDARD": {Value: "20", Defined: true}},
	}

	var a, b bytes.Buffer
	_ = Emit(cfg, &a)
	_ = Emit(cfg, &b)

	if a.String() != b.String() {
		t.Fatalf("expected identical output across runs")
	}
}

func TestEmitTargetWithVisibilityBuckets(t *testing.T) {
	sources := config.Visibility[config.Expression]{
		Private: config.Configs[config.Expression]{Defined: true, Global: []config.Expression{{Value: "a.cpp", Defined: true}}},
	}
	target := config.Target{
		Kind:    config.KindLibrary,
		Name:    "mylib",
		LibKind: config.LibStatic,
		Settings: config.TargetSettings{
			Sources: sources,
		},
	}
	cfg := config.Config{Project: config.ProjectHeader{Name: "p"}, Targets: []config.Target{target}}

	var buf bytes.Buffer
	if err := Emit(cfg, &buf); err != nil {
		t.Fatalf("emit: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "add_library(mylib STATIC)") {
		t.Fatalf("expected add_library line, got:\n%s", out)
	}
	if !strings.Contains(out, "target_sources(mylib") || !strings.Contains(out, "a.cpp") {
		t.Fatalf("expected sources block, got:\n%s", out)
	}
	if !strings.Contains(out, "cgen_target_1()") {
		t.Fatalf("expected target function invocation, got:\n%s", out)
	}
}

func TestEmitExternalPackageFunctionShape(t *testing.T) {
	pkg := config.Package{
		Name: "fmtlib",
		External: &config.ExternalPackage{URL: "https://example.com/fmt.git", Strategy: config.StrategySubmodule, Options: map[string]config.Expression{}},
	}
	cfg := config.Config{Project: config.ProjectHeader{Name: "p"}, Packages: []config.Package{pkg}}

	var buf bytes.Buffer
	if err := Emit(cfg, &buf); err != nil {
		t.Fatalf("emit: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "function(cgen_package_1)") {
		t.Fatalf("expected package function, got:\n%s", out)
	}
	if !strings.Contains(out, "add_subdirectory(fmtlib)") {
		t.Fatalf("expected add_subdirectory, got:\n%s", out)
	}
	if !strings.Contains(out, "cgen_package_1()") {
		t.Fatalf("expected package function call, got:\n%s", out)
	}
}

func TestEmitSystemPackageWithIfGuard(t *testing.T) {
	pkg := config.Package{
		Name:   "Threads",
		If:     "UNIX",
		System: &config.SystemPackage{Required: true},
	}
	cfg := config.Config{Project: config.ProjectHeader{Name: "p"}, Packages: []config.Package{pkg}}

	var buf bytes.Buffer
	_ = Emit(cfg, &buf)
	out := buf.String()
	if !strings.Contains(out, "if(UNIX)") || !strings.Contains(out, "find_package(Threads REQUIRED)") {
		t.Fatalf("expected guarded find_package, got:\n%s", out)
	}
}

func TestEmitNeverProducesConsecutiveBlankLines(t *testing.T) {
	cfg := config.Config{Project: config.ProjectHeader{Name: "p"}}
	var buf bytes.Buffer
	_ = Emit(cfg, &buf)
	if strings.Contains(buf.String(), "\n\n\n") {
		t.Fatalf("expected no double-blank runs, got:\n%q", buf.String())
	}
}
