package cli

import "github.com/charmbracelet/bubbles/key"

var (
	backBinding = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back"))
	quitBinding = key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit"))
)

// navKeyMap binds the navigator's keys. Single-letter moves drag and
// release in one press; their shifted forms only drag, leaving the surface
// off its anchor until Release.
type navKeyMap struct {
	Finer   key.Binding
	Coarser key.Binding
	Earlier key.Binding
	Later   key.Binding

	DragFiner   key.Binding
	DragCoarser key.Binding
	DragEarlier key.Binding
	DragLater   key.Binding
	Release     key.Binding

	NextBlock key.Binding
	PrevBlock key.Binding
	Up        key.Binding
	Down      key.Binding

	Descend key.Binding
	Split   key.Binding
	Today   key.Binding

	Add    key.Binding
	Edit   key.Binding
	Toggle key.Binding
	Delete key.Binding
}

func newNavKeyMap() navKeyMap {
	return navKeyMap{
		Finer:   key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/l", "zoom")),
		Coarser: key.NewBinding(key.WithKeys("l", "right")),
		Earlier: key.NewBinding(key.WithKeys("k"), key.WithHelp("j/k", "date")),
		Later:   key.NewBinding(key.WithKeys("j")),

		DragFiner:   key.NewBinding(key.WithKeys("H")),
		DragCoarser: key.NewBinding(key.WithKeys("L")),
		DragEarlier: key.NewBinding(key.WithKeys("K")),
		DragLater:   key.NewBinding(key.WithKeys("J")),
		Release:     key.NewBinding(key.WithKeys("."), key.WithHelp(".", "release")),

		NextBlock: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "block")),
		PrevBlock: key.NewBinding(key.WithKeys("shift+tab")),
		Up:        key.NewBinding(key.WithKeys("up")),
		Down:      key.NewBinding(key.WithKeys("down")),

		Descend: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Split:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "split")),
		Today:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),

		Add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Edit:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Toggle: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "done")),
		Delete: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	}
}

// ShortHelp lists the bindings shown in the status bar.
func (k navKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Finer, k.Earlier, k.NextBlock, k.Descend, k.Split, k.Add, k.Toggle, k.Today}
}
