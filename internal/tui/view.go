package tui

import (
	"fmt"
	"strings"
)

// View renders the model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderSeparator())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderSeparator())
	b.WriteString("\n")
	b.WriteString(m.textArea.View())
	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m *Model) renderHeader() string {
	return titleStyle.Render("Fitaura") + "  " + subtitleStyle.Render("user "+m.userID)
}

func (m *Model) renderSeparator() string {
	return separatorStyle.Render(strings.Repeat("─", max(m.width-2, 10)))
}

func (m *Model) renderHelp() string {
	if m.processing {
		return footerStyle.Render("working on it...")
	}
	keys := []struct{ key, desc string }{
		{"enter", "send"},
		{"shift+enter", "newline"},
		{"pgup/pgdown", "scroll"},
		{"esc", "quit"},
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, helpKeyStyle.Render(k.key)+" "+helpStyle.Render(k.desc))
	}
	return strings.Join(parts, helpStyle.Render(" • "))
}

func (m *Model) renderTranscript() string {
	var b strings.Builder
	for _, e := range m.transcript {
		switch e.kind {
		case entryUser:
			b.WriteString(userLabelStyle.Render("You"))
			b.WriteString("\n")
			b.WriteString(userMessageStyle.Render(e.text))
		case entryAgent:
			b.WriteString(agentLabelStyle.Render(formatAgentName(e.agent)))
			b.WriteString("\n")
			b.WriteString(agentTextStyle.Render(truncateString(e.text, 200)))
		case entryAnswer:
			b.WriteString(m.renderMarkdown(e.text))
		case entryError:
			b.WriteString(errorStyle.Render("Error: " + e.text))
		}
		b.WriteString("\n\n")
	}
	if m.processing {
		status := "thinking"
		if m.activeAgent != "" {
			status = formatAgentName(m.activeAgent) + " is working"
		}
		b.WriteString(fmt.Sprintf("%s %s", m.spinner.View(), subtitleStyle.Render(status)))
	}
	return b.String()
}

func (m *Model) renderMarkdown(text string) string {
	if m.mdRenderer == nil {
		return text
	}
	out, err := m.mdRenderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

// formatAgentName turns "DietAgent" into "Diet agent".
func formatAgentName(name string) string {
	if base, ok := strings.CutSuffix(name, "Agent"); ok && base != "" {
		return base + " agent"
	}
	return name
}

func truncateString(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
