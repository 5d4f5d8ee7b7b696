package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/person"
	"github.com/matzehuels/kintree/pkg/session"
	"github.com/matzehuels/kintree/pkg/view"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

func (c *CLI) browseCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "browse <input>",
		Short: "Browse the family forest interactively",
		Long: `Browse opens a terminal view of the selected tree.

Keys:
  ↑/k ↓/j   move
  ⏎/space   fold or unfold the selected person
  c / e     collapse or expand everything
  t         switch to the next tree
  r         mark the selected person; press again on another to relate them
  q         quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := c.openSession(ctx, args[0], format)
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(NewBrowseModel(ctx, sess), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "run browser")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "input format, "+formatList())

	return cmd
}

// =============================================================================
// BrowseModel - Interactive forest view
// =============================================================================

// BrowseModel is the bubbletea model of the forest browser. The session is
// shared; the model only tracks the cursor and the marked person.
type BrowseModel struct {
	ctx    context.Context
	sess   *session.Session
	Nodes  []view.Node
	Cursor int
	Offset int
	Height int
	Marked person.ID
	Status string
}

// NewBrowseModel creates a browser over sess.
func NewBrowseModel(ctx context.Context, sess *session.Session) BrowseModel {
	return BrowseModel{
		ctx:    ctx,
		sess:   sess,
		Nodes:  sess.Nodes(ctx),
		Height: 20,
	}
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.Status = ""
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "enter", " ":
			if n, ok := m.current(); ok && n.HasChildren {
				if _, err := m.sess.ToggleFold(m.ctx, n.ID); err != nil {
					m.Status = errors.UserMessage(err)
				}
				m.reload(n.ID)
			}
		case "c":
			id := m.currentID()
			m.sess.CollapseAll(m.ctx)
			m.reload(id)
		case "e":
			id := m.currentID()
			m.sess.ExpandAll()
			m.reload(id)
		case "t":
			m.nextTree()
		case "r":
			m.relate()
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m *BrowseModel) move(delta int) {
	next := m.Cursor + delta
	if next < 0 || next >= len(m.Nodes) {
		return
	}
	m.Cursor = next
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m BrowseModel) current() (view.Node, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Nodes) {
		return view.Node{}, false
	}
	return m.Nodes[m.Cursor], true
}

func (m BrowseModel) currentID() person.ID {
	n, _ := m.current()
	return n.ID
}

// reload refreshes the rows and keeps the cursor on id when it is still
// visible.
func (m *BrowseModel) reload(id person.ID) {
	m.Nodes = m.sess.Nodes(m.ctx)
	idx := slices.IndexFunc(m.Nodes, func(n view.Node) bool { return n.ID == id })
	if idx < 0 {
		idx = min(m.Cursor, len(m.Nodes)-1)
	}
	m.Cursor = max(idx, 0)
	m.Offset = min(m.Offset, m.Cursor)
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m *BrowseModel) nextTree() {
	trees := m.sess.Trees()
	i := slices.Index(trees, m.sess.Tree())
	next := trees[(i+1)%len(trees)]
	if err := m.sess.SelectTree(next); err != nil {
		m.Status = errors.UserMessage(err)
		return
	}
	m.Marked = 0
	m.Cursor, m.Offset = 0, 0
	m.reload(0)
	m.Status = "tree " + next
}

func (m *BrowseModel) relate() {
	id := m.currentID()
	if id == 0 {
		return
	}
	if m.Marked == 0 || m.Marked == id {
		m.Marked = id
		m.Status = fmt.Sprintf("marked %d; select another person and press r", id)
		return
	}
	rel, err := m.sess.Relate(m.ctx, m.Marked, id)
	if err != nil {
		m.Status = errors.UserMessage(err)
	} else {
		m.Status = rel.Sentence(m.sess.Forest(m.ctx))
	}
	m.Marked = 0
}

func (m BrowseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("kintree · " + m.sess.Tree()))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ move  ⏎ fold  c/e collapse/expand  t tree  r relate  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Nodes))
	for i := m.Offset; i < end; i++ {
		n := m.Nodes[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = styleCursor.Render("> ")
		}
		line := formatNode(n, true)
		if n.ID == m.Marked {
			line += " " + styleMarked.Render("*")
		}
		if n.Folded && n.Hidden > 0 {
			line += listDimStyle.Render(fmt.Sprintf(" (+%d)", n.Hidden))
		}
		b.WriteString(cursor + line + "\n")
	}
	if len(m.Nodes) == 0 {
		b.WriteString(listDimStyle.Render("  no people in this tree") + "\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(m.Nodes)), len(m.Nodes))))
	if m.Status != "" {
		b.WriteString("  " + StyleHighlight.Render(m.Status))
	}
	return b.String()
}
