package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/srg/blegate/internal/testutils"
)

// Test device identifiers
const (
	TestDeviceAddress1 = "AA:BB:CC:DD:EE:FF"
	TestDeviceAddress2 = "11:22:33:44:55:66"
	TestDeviceUUID     = "5a2c1b7e-3f40-4c1e-9b8a-0d6e2f1a9c33"
)

// CommandTestSuite extends MockScannerSuite with command execution helpers.
// All cmd/blegate test suites should embed this instead of MockScannerSuite.
type CommandTestSuite struct {
	testutils.MockScannerSuite
}

// SetupSuite disables colors so verdict lines compare as plain text.
func (s *CommandTestSuite) SetupSuite() {
	s.MockScannerSuite.SetupSuite()
	color.NoColor = true
}

// CommandOutput holds what a command wrote to each stream
type CommandOutput struct {
	Stdout string
	Stderr string
}

// ExecuteCommand runs blegate with args against the scripted device.
func (s *CommandTestSuite) ExecuteCommand(args ...string) (CommandOutput, error) {
	return s.ExecuteCommandWithInput("", args...)
}

// ExecuteCommandWithInput runs blegate with stdin set to input.
func (s *CommandTestSuite) ExecuteCommandWithInput(input string, args ...string) (CommandOutput, error) {
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)

	root := newRootCmd()
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetIn(strings.NewReader(input))
	root.SetArgs(args)

	err := root.Execute()
	return CommandOutput{Stdout: stdout.String(), Stderr: stderr.String()}, err
}

// WriteFile writes content to a file in a per-test temp directory and returns its path.
func (s *CommandTestSuite) WriteFile(name, content string) string {
	path := filepath.Join(s.T().TempDir(), name)
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o600), "temp file write MUST succeed")
	return path
}
