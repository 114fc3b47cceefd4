// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build mage

// Package main provides build targets for the boardroom project using Mage.
//
// Usage:
//
//	mage build          Compile the boardroom binary to bin/
//	mage install        Install boardroom to GOPATH/bin
//	mage test:all       Run all tests
//	mage test:race      Run all tests with the race detector
//	mage test:cover     Write a coverage profile and print the summary
//	mage lint           Run golangci-lint
//	mage serve          Build and start the HTTP server against ./data
//	mage clean          Remove build artifacts
//	mage stats          Print Go lines of code per package
package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo       = "go"
	binaryName  = "boardroom"
	binaryDir   = "bin"
	cmdDir      = "./cmd/boardroom"
	versionVar  = "github.com/mesh-intelligence/boardroom/internal/cli.Version"
	devDataDir  = "data"
	devListen   = "127.0.0.1:8080"
	coverageOut = "coverage.out"
)

// version returns the git description of HEAD, or "dev" outside a checkout.
func version() string {
	out, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || out == "" {
		return "dev"
	}
	return strings.TrimPrefix(out, "v")
}

// Build compiles the boardroom binary to bin/ with the version stamped in.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	ldflags := "-X " + versionVar + "=" + version()
	return sh.RunV(binGo, "build", "-v", "-ldflags", ldflags, "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	return sh.Copy(filepath.Join(gopath, "bin", binaryName), filepath.Join(binaryDir, binaryName))
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Serve builds the binary and serves ./data on localhost.
func Serve() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binaryDir, binaryName), "--data-dir", devDataDir, "serve", "--listen", devListen)
}

// Clean removes build artifacts.
func Clean() error {
	for _, p := range []string{binaryDir, coverageOut} {
		if err := os.RemoveAll(p); err != nil {
			return err
		}
	}
	return sh.RunV(binGo, "clean")
}
