// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/matt-FFFFFF/stoop/internal/progress"
	"github.com/matt-FFFFFF/stoop/internal/runner"
)

// NodeStatus represents the current state of a task or command in the TUI.
type NodeStatus int

const (
	StatusPending NodeStatus = iota
	StatusRunning
	StatusSuccess
	StatusFailed
	StatusSkipped
	StatusWarning
)

// String returns a string representation of the status.
func (s NodeStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	case StatusWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Node is a task, or a command below a task, in the execution tree.
type Node struct {
	Path       []string   // task, or task and command
	Name       string     // display name
	Status     NodeStatus // current execution status
	StartTime  *time.Time // when execution started
	EndTime    *time.Time // when execution completed
	LastOutput string     // last line of output
	Message    string     // error, warning or skip message
	Children   []*Node
	mutex      sync.RWMutex
}

// NewNode creates a new pending node.
func NewNode(path []string, name string) *Node {
	return &Node{
		Path:     append([]string(nil), path...),
		Name:     name,
		Status:   StatusPending,
		Children: make([]*Node, 0),
	}
}

// UpdateStatus safely updates the node status and its timings.
func (n *Node) UpdateStatus(status NodeStatus) {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	n.Status = status
	now := time.Now()

	switch status {
	case StatusRunning:
		if n.StartTime == nil {
			n.StartTime = &now
		}
	case StatusSuccess, StatusFailed, StatusSkipped, StatusWarning:
		if n.EndTime == nil {
			n.EndTime = &now
		}
	}
}

// UpdateOutput keeps the last non-empty line of output.
func (n *Node) UpdateOutput(output string) {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	if output != "" {
		lines := strings.Split(strings.TrimSpace(output), "\n")
		n.LastOutput = strings.TrimSpace(lines[len(lines)-1])
	}
}

// UpdateMessage safely updates the status message.
func (n *Node) UpdateMessage(msg string) {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	n.Message = msg
}

// DisplayInfo is a consistent snapshot of a node for rendering.
type DisplayInfo struct {
	Status     NodeStatus
	Name       string
	LastOutput string
	Message    string
	StartTime  *time.Time
	EndTime    *time.Time
}

// GetDisplayInfo safely retrieves display information.
func (n *Node) GetDisplayInfo() DisplayInfo {
	n.mutex.RLock()
	defer n.mutex.RUnlock()

	return DisplayInfo{
		Status:     n.Status,
		Name:       n.Name,
		LastOutput: n.LastOutput,
		Message:    n.Message,
		StartTime:  n.StartTime,
		EndTime:    n.EndTime,
	}
}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	title     string
	rootNode  *Node
	nodeMap   map[string]*Node
	width     int
	height    int
	quitting  bool
	completed bool
	report    *runner.Report
	runErr    error
	mutex     sync.RWMutex

	spinner  spinner.Model
	viewport viewport.Model
	styles   *Styles
}

// Styles contains all the styling for the TUI.
type Styles struct {
	Title      lipgloss.Style
	Pending    lipgloss.Style
	Running    lipgloss.Style
	Success    lipgloss.Style
	Failed     lipgloss.Style
	Warning    lipgloss.Style
	Output     lipgloss.Style
	Error      lipgloss.Style
	Help       lipgloss.Style
	TreeBranch lipgloss.Style
	Border     lipgloss.Style
}

// NewStyles creates the default styling for the TUI.
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginBottom(1),
		Pending: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
		Running: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")),
		Failed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")),
		Warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color("3")),
		Output: lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			Italic(true),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Italic(true),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
		TreeBranch: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")),
	}
}

// NewModel creates a new TUI model. title is shown above the task tree.
func NewModel(ctx context.Context, title string) *Model {
	s := spinner.New(spinner.WithSpinner(spinner.Dot))

	return &Model{
		ctx:      ctx,
		title:    title,
		rootNode: NewNode(nil, "root"),
		nodeMap:  make(map[string]*Node),
		spinner:  s,
		viewport: viewport.New(defaultViewportWidth, defaultViewportHeight),
		styles:   NewStyles(),
	}
}

func pathToString(path []string) string {
	return strings.Join(path, "\x00")
}

// getOrCreateNode returns the node at path, creating it and its task parent
// when needed.
func (m *Model) getOrCreateNode(path []string) *Node {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	key := pathToString(path)
	if node, ok := m.nodeMap[key]; ok {
		return node
	}

	parent := m.rootNode
	if len(path) > 1 {
		parentKey := pathToString(path[:1])

		p, ok := m.nodeMap[parentKey]
		if !ok {
			p = NewNode(path[:1], path[0])
			m.nodeMap[parentKey] = p
			m.rootNode.Children = append(m.rootNode.Children, p)
		}

		parent = p
	}

	node := NewNode(path, path[len(path)-1])
	m.nodeMap[key] = node
	parent.Children = append(parent.Children, node)

	return node
}

// processProgressEvent applies a progress event to the tree.
func (m *Model) processProgressEvent(event progress.Event) tea.Cmd {
	if event.Task == "" {
		return nil
	}

	path := []string{event.Task}
	if event.Command != "" {
		path = append(path, event.Command)
	}

	node := m.getOrCreateNode(path)

	switch event.Type {
	case progress.EventStarted:
		node.UpdateStatus(StatusRunning)
	case progress.EventCompleted:
		node.UpdateStatus(StatusSuccess)
	case progress.EventFailed:
		node.UpdateStatus(StatusFailed)

		if event.Data.Error != nil {
			node.UpdateMessage(event.Data.Error.Error())
		}

		if len(path) > 1 {
			m.getOrCreateNode(path[:1]).UpdateStatus(StatusFailed)
		}
	case progress.EventWarning:
		node.UpdateStatus(StatusWarning)

		if event.Data.Error != nil {
			node.UpdateMessage(event.Data.Error.Error())
		}
	case progress.EventSkipped:
		node.UpdateStatus(StatusSkipped)
		node.UpdateMessage(event.Message)
	case progress.EventOutput:
		node.UpdateOutput(event.Data.OutputLine)
	case progress.EventProgress:
		node.UpdateMessage(event.Message)
	}

	return nil
}
