// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/matt-FFFFFF/stoop/internal/progress"
	"github.com/matt-FFFFFF/stoop/internal/runner"
)

const (
	defaultViewportWidth        = 80
	defaultViewportHeight       = 20
	minViewportWidth            = 20
	minStatusBarAvailableHeight = 10
	reservedLines               = 7
	durationRounding            = 100 * time.Millisecond
	ellipsis                    = "..."
)

// ProgressEventMsg wraps a progress event for the tea framework.
type ProgressEventMsg struct {
	Event progress.Event
}

// RunCompletedMsg indicates that the run has finished.
type RunCompletedMsg struct {
	Report *runner.Report
	Err    error
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		tea.EnableMouseCellMotion,
	)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)

		return m, cmd

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)

		return m, cmd

	case tea.WindowSizeMsg:
		m.mutex.Lock()
		m.width = msg.Width
		m.height = msg.Height
		m.updateViewportSize()
		m.mutex.Unlock()

		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case ProgressEventMsg:
		return m, m.processProgressEvent(msg.Event)

	case RunCompletedMsg:
		m.mutex.Lock()
		m.completed = true
		m.report = msg.Report
		m.runErr = msg.Err
		m.mutex.Unlock()

		return m, nil
	}

	return m, nil
}

func (m *Model) updateViewportSize() {
	w := max(m.width-2, minViewportWidth) //nolint:mnd // border
	h := max(m.height-reservedLines, 1)
	m.viewport.Width = w
	m.viewport.Height = h
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var content strings.Builder

	m.renderTree(&content)

	if m.completed {
		content.WriteString("\n")
		content.WriteString(m.completionLine())
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())

	var view strings.Builder

	view.WriteString(m.styles.Title.Render(m.title))
	view.WriteString("\n")
	view.WriteString(m.styles.Border.Render(m.viewport.View()))

	if m.height > minStatusBarAvailableHeight {
		view.WriteString("\n")
		view.WriteString(m.renderStatusBar())
		view.WriteString("\n")

		helpText := "↑/↓ or j/k to scroll, PgUp/PgDn for pages, 'q' to quit"
		if m.completed {
			helpText = "↑/↓ or j/k to scroll, 'q' to quit and return to terminal"
		}

		view.WriteString(m.styles.Help.Render(helpText))
	}

	return view.String()
}

func (m *Model) completionLine() string {
	switch {
	case m.runErr != nil:
		return m.styles.Failed.Render("✗ " + m.runErr.Error())
	case m.report != nil && len(m.report.Warnings()) > 0:
		return m.styles.Warning.Render(fmt.Sprintf("! completed with %d warning(s)", len(m.report.Warnings())))
	default:
		return m.styles.Success.Render("✓ completed successfully")
	}
}

func (m *Model) renderStatusBar() string {
	var running, done, failed int

	for _, task := range m.rootNode.Children {
		switch task.GetDisplayInfo().Status {
		case StatusRunning:
			running++
		case StatusSuccess:
			done++
		case StatusFailed:
			failed++
		}
	}

	return m.styles.Help.Render(fmt.Sprintf("tasks: %d running, %d done, %d failed", running, done, failed))
}

func (m *Model) renderTree(b *strings.Builder) {
	for i, task := range m.rootNode.Children {
		last := i == len(m.rootNode.Children)-1
		m.renderNode(b, task, "", last)

		childPrefix := "│   "
		if last {
			childPrefix = "    "
		}

		for j, cmd := range task.Children {
			m.renderNode(b, cmd, childPrefix, j == len(task.Children)-1)
		}
	}
}

func (m *Model) statusIcon(s NodeStatus) (string, lipgloss.Style) {
	switch s {
	case StatusRunning:
		return m.spinner.View(), m.styles.Running
	case StatusSuccess:
		return "✓", m.styles.Success
	case StatusFailed:
		return "✗", m.styles.Failed
	case StatusWarning:
		return "!", m.styles.Warning
	case StatusSkipped:
		return "~", m.styles.Pending
	default:
		return "…", m.styles.Pending
	}
}

func (m *Model) renderNode(b *strings.Builder, node *Node, prefix string, isLast bool) {
	info := node.GetDisplayInfo()

	connector := "├── "
	if isLast {
		connector = "└── "
	}

	icon, style := m.statusIcon(info.Status)
	left := fmt.Sprintf("%s %s", icon, style.Render(info.Name))

	if info.StartTime != nil {
		elapsed := time.Since(*info.StartTime)
		if info.EndTime != nil {
			elapsed = info.EndTime.Sub(*info.StartTime)
		}

		left += m.styles.Output.Render(fmt.Sprintf(" (%v)", elapsed.Round(durationRounding)))
	}

	var right string

	switch {
	case info.Message != "" && info.Status == StatusFailed:
		right = m.styles.Error.Render(truncate(info.Message, m.viewport.Width/2)) //nolint:mnd
	case info.Message != "" && (info.Status == StatusWarning || info.Status == StatusSkipped):
		right = m.styles.Warning.Render(truncate(info.Message, m.viewport.Width/2)) //nolint:mnd
	case info.LastOutput != "" && info.Status == StatusRunning:
		right = m.styles.Output.Render(truncate(info.LastOutput, m.viewport.Width/2)) //nolint:mnd
	}

	treePrefix := m.styles.TreeBranch.Render(prefix + connector)
	leftWidth := max(m.viewport.Width/2-lipgloss.Width(treePrefix), minViewportWidth/2) //nolint:mnd

	b.WriteString(treePrefix)
	b.WriteString(left)

	if right != "" {
		if pad := leftWidth - lipgloss.Width(left); pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
		} else {
			b.WriteString(" ")
		}

		b.WriteString(right)
	}

	b.WriteString("\n")
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= len(ellipsis) || len(r) <= width {
		return s
	}

	return string(r[:width-len(ellipsis)]) + ellipsis
}
