package player

import (
	"fmt"
	"os/exec"
	"runtime"
)

// IINA implements the Player interface for macOS native IINA playback.
// IINA does not expose mpv's IPC socket, so everything beyond launching
// and terminating the process is a stub; the caller degrades to one-shot
// playback without the fallback chain.
type IINA struct {
	cmd    *exec.Cmd
	exited chan struct{}
}

func NewIINA() *IINA {
	return &IINA{
		exited: make(chan struct{}),
	}
}

func (m *IINA) Play(rawURL string, title string, headers map[string]string) error {
	if runtime.GOOS != "darwin" {
		return fmt.Errorf("IINA is only supported on macOS")
	}

	safeURL, err := sanitizeMediaTarget(rawURL)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	args := []string{"-a", "IINA"}

	// IINA accepts mpv-specific arguments via the '--args' flag separator.
	args = append(args, "--args", fmt.Sprintf("--force-media-title=%s", sanitizeTitle(title)))

	if header := headerFields(headers); header != "" {
		args = append(args, fmt.Sprintf("--http-header-fields=%s", header))
	}

	args = append(args, safeURL)

	m.cmd = exec.Command("open", args...)

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("LaunchServices failed to invoke IINA: %w", err)
	}

	// Wait for process to detach/finish
	go func() {
		_ = m.cmd.Wait()
		close(m.exited)
	}()

	return nil
}

func (m *IINA) Wait() <-chan struct{} {
	return m.exited
}

// Stub implementations for the rest of the interface
func (m *IINA) Start(title string) error { return fmt.Errorf("idle start not supported on IINA") }
func (m *IINA) LoadFile(url string) error {
	return fmt.Errorf("IPC loading not supported on IINA")
}
func (m *IINA) SetHeaders(map[string]string) error { return nil }
func (m *IINA) TogglePause() error                 { return nil }
func (m *IINA) GetTimePos() (float64, error)       { return 0, fmt.Errorf("not supported on IINA") }
func (m *IINA) GetDuration() (float64, error)      { return 0, fmt.Errorf("not supported on IINA") }
func (m *IINA) GetPausedStatus() (bool, error)     { return false, fmt.Errorf("not supported on IINA") }
func (m *IINA) HasActivePlayback() (bool, error)   { return false, nil }
func (m *IINA) Seek(seconds float64) error         { return nil }
func (m *IINA) IsRunning() bool {
	select {
	case <-m.exited:
		return false
	default:
		return true
	}
}
func (m *IINA) Close() error {
	if m.cmd != nil && m.cmd.Process != nil {
		_ = m.cmd.Process.Kill()
	}
	return nil
}
func (m *IINA) Socket() string { return "iina-native" }
