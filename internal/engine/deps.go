package engine

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// DependencyStatus describes one external tool the pipeline may call.
type DependencyStatus struct {
	Name         string
	Required     bool
	Installed    bool
	Version      string
	Path         string
	Instructions string
}

// CheckDependencies probes the host for every tool the pipeline can use.
// ffmpeg is the only hard requirement; the speech tools are alternatives,
// so each is reported as optional.
func CheckDependencies() []DependencyStatus {
	return []DependencyStatus{
		checkFFmpeg(),
		checkSay(),
		checkPowerShell(),
		checkGTTSCLI(),
	}
}

// Report renders the dependency list as a colored terminal report.
func Report(statuses []DependencyStatus) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		MarginBottom(1)

	installedStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	missingStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("196"))

	optionalStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("214"))

	var report strings.Builder
	report.WriteString(titleStyle.Render("Dependency Check"))
	report.WriteString("\n\n")

	for _, status := range statuses {
		switch {
		case status.Installed:
			report.WriteString(installedStyle.Render(fmt.Sprintf("  ✓ %s: ", status.Name)))
			report.WriteString(status.Path)
			if status.Version != "" {
				report.WriteString(" " + status.Version)
			}
			report.WriteString("\n")
		case status.Required:
			report.WriteString(missingStyle.Render(fmt.Sprintf("  ✗ %s: ", status.Name)))
			report.WriteString("Not installed (required)\n")
			report.WriteString(fmt.Sprintf("    %s\n", status.Instructions))
		default:
			report.WriteString(optionalStyle.Render(fmt.Sprintf("  ○ %s: ", status.Name)))
			report.WriteString("Not installed (optional)\n")
			report.WriteString(fmt.Sprintf("    %s\n", status.Instructions))
		}
	}

	return report.String()
}

func checkSay() DependencyStatus {
	status := DependencyStatus{Name: "say"}
	if path, err := exec.LookPath("say"); err == nil {
		status.Installed = true
		status.Path = path
		return status
	}
	status.Instructions = "Built into macOS; not available on this platform"
	return status
}

func checkPowerShell() DependencyStatus {
	status := DependencyStatus{Name: "powershell"}
	if path, err := exec.LookPath("powershell"); err == nil {
		status.Installed = true
		status.Path = path
		return status
	}
	status.Instructions = "Built into Windows; not available on this platform"
	return status
}

func checkGTTSCLI() DependencyStatus {
	status := DependencyStatus{Name: "gtts-cli"}
	if path, err := exec.LookPath("gtts-cli"); err == nil {
		status.Installed = true
		status.Path = path
		if out, err := exec.Command(path, "--version").CombinedOutput(); err == nil {
			status.Version = strings.TrimSpace(string(out))
		}
		return status
	}
	status.Instructions = "Install with pip: pip install gTTS\n    Or: pipx install gTTS"
	return status
}

func checkFFmpeg() DependencyStatus {
	status := DependencyStatus{Name: "ffmpeg", Required: true}
	if path, err := exec.LookPath("ffmpeg"); err == nil {
		status.Installed = true
		status.Path = path
		if out, err := exec.Command(path, "-version").CombinedOutput(); err == nil {
			fields := strings.Fields(strings.SplitN(string(out), "\n", 2)[0])
			if len(fields) >= 3 {
				status.Version = fields[2]
			}
		}
		return status
	}
	status.Instructions = FFmpegInstallHint()
	return status
}

// FFmpegInstallHint returns a platform-appropriate install instruction for
// ffmpeg.
func FFmpegInstallHint() string {
	switch runtime.GOOS {
	case "darwin":
		return "Install with: brew install ffmpeg"
	case "linux":
		distro := detectLinuxDistro()
		switch {
		case strings.Contains(distro, "debian") || strings.Contains(distro, "ubuntu"):
			return "Install with: sudo apt-get install ffmpeg"
		case strings.Contains(distro, "fedora") || strings.Contains(distro, "rhel"):
			return "Install with: sudo dnf install ffmpeg"
		case strings.Contains(distro, "arch"):
			return "Install with: sudo pacman -S ffmpeg"
		}
		return "Install with your package manager: ffmpeg"
	case "windows":
		return "Download from: https://ffmpeg.org/download.html and add to PATH"
	default:
		return "Install ffmpeg from: https://ffmpeg.org/download.html"
	}
}

func detectLinuxDistro() string {
	data, err := os.ReadFile("/etc/os-release")
	if err != nil {
		return "unknown"
	}
	content := strings.ToLower(string(data))
	for _, distro := range []string{"ubuntu", "debian", "fedora", "arch", "rhel", "centos"} {
		if strings.Contains(content, distro) {
			return distro
		}
	}
	return "unknown"
}
