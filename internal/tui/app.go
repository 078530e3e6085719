package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/nearby/internal/categories"
	"github.com/pders01/nearby/internal/config"
	"github.com/pders01/nearby/internal/launcher"
	"github.com/pders01/nearby/internal/places"
	"github.com/pders01/nearby/internal/storage"
)

// DetailsFetcher loads fuller data for a place. Results are published as
// place-modified events.
type DetailsFetcher interface {
	FetchDetails(ctx context.Context, id string) error
}

// Deps are the collaborators the App drives. Only Engine is required.
type Deps struct {
	Engine     *places.Engine
	Details    DetailsFetcher
	Launcher   *launcher.Launcher
	Categories *categories.Table
}

type App struct {
	config     *config.Config
	engine     *places.Engine
	details    DetailsFetcher
	launcher   *launcher.Launcher
	glyphs     *categories.Table
	keyHandler *KeyHandler

	placeList   list.Model
	searchInput textinput.Model
	viewport    viewport.Model
	spinner     spinner.Model
	help        help.Model

	view         View
	previousView View

	projection  places.Projection
	rows        []*storage.Place
	items       []placeItem
	shownList   places.ListKind
	busy        bool
	retryPhrase string
	detailPlace *storage.Place

	status     string
	statusKind StatusKind
	statusSeq  int

	width           int
	height          int
	glamourRenderer *glamour.TermRenderer
	rendererWidth   int

	ctx    context.Context
	cancel context.CancelFunc
}

func NewApp(cfg *config.Config, deps Deps) *App {
	placeList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	placeList.Title = "› " + AppName
	placeList.SetShowStatusBar(false)
	placeList.SetFilteringEnabled(true)
	placeList.SetShowHelp(false)
	placeList.DisableQuitKeybindings()
	if f := cfg.Keys.Bindings.Filter; f != "" {
		placeList.KeyMap.Filter = key.NewBinding(key.WithKeys(f), key.WithHelp(f, "filter"))
	}

	si := textinput.New()
	si.Placeholder = "Search places, e.g. coffee or bakery..."
	si.CharLimit = 256
	si.Prompt = "› "

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(AccentColor)

	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		config:       cfg,
		engine:       deps.Engine,
		details:      deps.Details,
		launcher:     deps.Launcher,
		glyphs:       deps.Categories,
		placeList:    placeList,
		searchInput:  si,
		viewport:     viewport.New(0, 0),
		spinner:      sp,
		help:         help.New(),
		view:         ViewPlaces,
		previousView: ViewPlaces,
		ctx:          ctx,
		cancel:       cancel,
	}
	app.keyHandler = NewKeyHandler(app, cfg)
	app.projection = app.engine.Project()
	app.placeList.Title = app.listTitle()

	return app
}

// Close stops background commands started by the App.
func (a *App) Close() {
	a.cancel()
}

func (a *App) Init() tea.Cmd {
	return resolve()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.placeList.SetSize(msg.Width, msg.Height-3)
		a.viewport.Width = msg.Width
		a.viewport.Height = msg.Height - 3
		a.help.Width = msg.Width

		inputWidth := msg.Width - 8
		if inputWidth < 10 {
			inputWidth = msg.Width - 4
		}
		a.searchInput.Width = inputWidth

		if a.view == ViewDetail && a.detailPlace != nil {
			cmds = append(cmds, a.renderDetail(a.detailPlace))
		}

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case resolveMsg:
		return a, a.apply(a.engine.Resolve())

	case eventMsg:
		return a, a.apply(a.engine.Dispatch(msg.ev))

	case detailRenderedMsg:
		if a.view == ViewDetail && a.detailPlace != nil && a.detailPlace.ID == msg.id {
			a.viewport.SetContent(msg.content)
		}
		return a, nil

	case spinner.TickMsg:
		if !a.busy {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case statusMsg:
		return a, a.setStatus(msg.text, msg.kind)

	case statusClearMsg:
		if msg.seq == a.statusSeq {
			a.status = ""
		}
		return a, nil

	case openedMsg:
		if msg.err != nil {
			return a, a.setStatus(wrapErr("open "+truncateMiddle(msg.url, 40), msg.err).Error(), StatusError)
		}
		return a, a.setStatus(MsgOpened(msg.url), StatusSuccess)

	case copiedMsg:
		if msg.err != nil {
			return a, a.setStatus(wrapErr("copy address", msg.err).Error(), StatusError)
		}
		return a, a.setStatus(MsgCopied(msg.text), StatusSuccess)

	case errorMsg:
		return a, a.setStatus(describeErr(msg.err), StatusError)
	}

	switch a.view {
	case ViewPlaces:
		newListModel, cmd := a.placeList.Update(msg)
		a.placeList = newListModel
		cmds = append(cmds, cmd)
	case ViewSearch:
		newSearchInput, cmd := a.searchInput.Update(msg)
		a.searchInput = newSearchInput
		cmds = append(cmds, cmd)
	case ViewDetail:
		switch msg.(type) {
		case tea.WindowSizeMsg, tea.MouseMsg:
			newViewport, cmd := a.viewport.Update(msg)
			a.viewport = newViewport
			cmds = append(cmds, cmd)
		}
	}

	return a, tea.Batch(cmds...)
}

// apply carries out the effects of one engine call.
func (a *App) apply(eff places.Effects) tea.Cmd {
	var cmds []tea.Cmd

	switch eff.Progress {
	case places.ProgressOn:
		if !a.busy {
			a.busy = true
			cmds = append(cmds, a.spinner.Tick)
		}
	case places.ProgressOff:
		a.busy = false
	}

	if eff.Render {
		cmds = append(cmds, a.render())
	}
	if len(eff.Refresh) > 0 {
		cmds = append(cmds, a.refresh(eff.Refresh))
	}
	if eff.SetSearchField {
		a.searchInput.SetValue(eff.SearchField)
		a.searchInput.CursorEnd()
	}
	if eff.RetryPhrase != "" {
		a.retryPhrase = eff.RetryPhrase
	}
	if eff.Notice != "" {
		cmds = append(cmds, a.setStatus(eff.Notice, StatusWarn))
	}
	if eff.Navigate != nil {
		cmds = append(cmds, a.navigate(*eff.Navigate))
	}

	return tea.Batch(cmds...)
}

// render projects the engine again and replaces every row.
func (a *App) render() tea.Cmd {
	a.projection = a.engine.Project()
	if a.projection.Current != a.shownList {
		a.shownList = a.projection.Current
		a.placeList.ResetFilter()
		a.placeList.ResetSelected()
	}
	a.placeList.Title = a.listTitle()

	rows := a.projection.Items
	items := make([]list.Item, len(rows))
	a.items = make([]placeItem, len(rows))
	for i, p := range rows {
		a.items[i] = newPlaceItem(p, a.glyphs)
		items[i] = a.items[i]
	}
	a.rows = rows
	a.placeList.Filter = placeFilter(a.rows, a.items)
	return a.placeList.SetItems(items)
}

// refresh redraws the rows holding the given places in place. The previous
// row slices may still be read by a running filter, so they are copied.
func (a *App) refresh(ids []string) tea.Cmd {
	var cmds []tea.Cmd
	rows := append([]*storage.Place(nil), a.rows...)
	items := append([]placeItem(nil), a.items...)
	changed := false

	for _, id := range ids {
		held := a.engine.Find(id)
		if held == nil {
			continue
		}
		for i, p := range rows {
			if p.ID != id {
				continue
			}
			rows[i] = held
			items[i] = newPlaceItem(held, a.glyphs)
			cmds = append(cmds, a.placeList.SetItem(i, items[i]))
			changed = true
		}
		if a.view == ViewDetail && a.detailPlace != nil && a.detailPlace.ID == id {
			a.detailPlace = held
			cmds = append(cmds, a.renderDetail(held))
		}
	}

	if changed {
		a.rows = rows
		a.items = items
		a.placeList.Filter = placeFilter(a.rows, a.items)
	}
	return tea.Batch(cmds...)
}

func (a *App) navigate(nav places.Navigation) tea.Cmd {
	switch nav.Kind {
	case places.NavigateDetail:
		if nav.Place == nil {
			return nil
		}
		a.previousView = a.view
		a.view = ViewDetail
		a.detailPlace = nav.Place
		a.viewport.SetContent(renderMuted(MsgLoadingDetails))
		a.viewport.GotoTop()
		return tea.Batch(a.renderDetail(nav.Place), a.fetchDetails(nav.Place.ID))
	case places.NavigateMap:
		return a.openMap(nav)
	default:
		return nil
	}
}

func (a *App) listTitle() string {
	title := "› " + a.projection.Title
	if a.projection.Current == places.ListFavorites {
		title = "› favorites"
	}
	return title
}

// selectedPlace is the place the action keys apply to.
func (a *App) selectedPlace() *storage.Place {
	if a.view == ViewDetail {
		return a.detailPlace
	}
	if i, ok := a.placeList.SelectedItem().(placeItem); ok {
		return i.place
	}
	return nil
}

func (a *App) View() string {
	statusBar := a.getCustomStatusBar()
	contentHeight := a.height - 1 - lipgloss.Height(statusBar)
	if contentHeight < 0 {
		contentHeight = 0
	}

	var content string
	switch a.view {
	case ViewPlaces:
		content = a.placesView(contentHeight)
	case ViewSearch:
		content = a.searchView(contentHeight)
	case ViewDetail:
		content = a.viewport.View()
	}
	content = ContentWrapper(a.width, contentHeight).Render(content)

	separatorWidth := a.width
	if separatorWidth < 1 {
		separatorWidth = 1
	}
	separator := SeparatorStyle.Render(strings.Repeat("─", separatorWidth))

	return lipgloss.JoinVertical(lipgloss.Top, content, separator, statusBar)
}

func (a *App) placesView(height int) string {
	switch a.projection.Kind {
	case places.ShowProgress:
		header := renderHeader(a.listTitle(), "", a.width)
		body := a.spinner.View() + " " + renderMuted(MsgSearching)
		return lipgloss.JoinVertical(lipgloss.Top, header, renderCentered(a.width, height-1, body))
	case places.ShowEmpty:
		header := renderHeader(a.listTitle(), "", a.width)
		return lipgloss.JoinVertical(lipgloss.Top, header, renderCentered(a.width, height-1, GetCompactBanner(a.projection.Message)))
	default:
		return a.placeList.View()
	}
}

func (a *App) searchView(height int) string {
	a.searchInput.Width = a.width - 8
	if a.searchInput.Width < 10 {
		a.searchInput.Width = a.width - 4
	}

	subtitle := ""
	if last := a.engine.LastPhrase(); last != "" && a.busy {
		subtitle = "searching for " + last
	}
	searchContent := lipgloss.JoinVertical(
		lipgloss.Top,
		renderHeader("› search in "+a.engine.POI().DisplayLabel(), subtitle, a.width),
		"",
		renderInputFrame(a.searchInput.View(), a.searchInput.Focused(), a.searchInput.Width),
		renderHelp("Enter: search • Esc: back • "+helpEntry(a.keyHandler.keys.CancelSearch)),
	)
	return lipgloss.NewStyle().Width(a.width).Height(height).MaxHeight(height).Render(searchContent)
}

func (a *App) getCustomStatusBar() string {
	if a.help.ShowAll {
		return lipgloss.NewStyle().Width(a.width).Padding(0, 1).Render(a.help.View(a.keyHandler.keys))
	}

	if a.status != "" {
		return StatusBarStyle.Width(a.width).Render(a.statusKind.style().Render(a.status))
	}

	if a.busy {
		return StatusBarStyle.Width(a.width).Render(a.spinner.View() + " " + MsgSearching)
	}

	commands := a.keyHandler.GetHelpForCurrentView()
	if len(commands) == 0 {
		return ""
	}
	text := strings.Join(commands, " • ")
	if a.view == ViewPlaces && a.projection.Kind == places.ShowList {
		text = MsgPlacesCount(len(a.rows)) + " • " + text
	}
	if a.width > 2 {
		text = truncateEnd(text, a.width-2)
	}
	return StatusBarStyle.Width(a.width).Render(text)
}
