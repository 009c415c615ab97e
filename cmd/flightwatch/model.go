package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/couchcryptid/flight-tracker-service/internal/client"
	"github.com/couchcryptid/flight-tracker-service/internal/domain"
	"github.com/couchcryptid/flight-tracker-service/internal/flights"
	"github.com/couchcryptid/flight-tracker-service/internal/trail"
)

// session is everything one running terminal client owns.
type session struct {
	flights  *flights.Service
	airports *client.AirportCache
	locator  *client.Locator
	follower *trail.Follower
	ref      domain.ReferenceData
	logger   *slog.Logger

	position     *domain.LatLon
	boundsOffset float64
	pollInterval time.Duration
}

type locationMsg struct {
	loc client.Location
}

type flightsMsg struct {
	res   flights.Result
	views []domain.FlightView
	err   error
}

type trailMsg struct {
	flightID string
	trail    domain.Trail
	applied  bool
	err      error
}

type tickMsg time.Time

type model struct {
	ctx  context.Context
	sess *session

	location client.Location
	located  bool
	bounds   domain.Bounds

	views     []domain.FlightView
	rejected  int
	throttled bool
	cursor    int

	selected     string
	selectedView *domain.FlightView
	trail        *domain.Trail
	trailErr     error

	err error
}

func newModel(ctx context.Context, sess *session) model {
	return model{ctx: ctx, sess: sess}
}

func (m model) Init() tea.Cmd {
	return m.locate()
}

func (m model) tick() tea.Cmd {
	return tea.Tick(m.sess.pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) locate() tea.Cmd {
	ctx, sess := m.ctx, m.sess
	return func() tea.Msg {
		return locationMsg{loc: sess.locator.Locate(ctx, sess.position)}
	}
}

// refresh fetches the flights for the current box and enriches them through
// the session's airport cache.
func (m model) refresh() tea.Cmd {
	ctx, sess, bounds := m.ctx, m.sess, m.bounds.String()
	return func() tea.Msg {
		res, err := sess.flights.GetFlights(ctx, bounds)
		if err != nil {
			return flightsMsg{err: err}
		}
		views := make([]domain.FlightView, 0, len(res.Flights))
		for _, f := range res.Flights {
			views = append(views, domain.EnrichFlight(ctx, f, sess.airports, sess.ref, sess.logger))
		}
		return flightsMsg{res: res, views: views}
	}
}

func (m model) followTrail(flightID string) tea.Cmd {
	ctx, follower := m.ctx, m.sess.follower
	return func() tea.Msg {
		t, applied, err := follower.Follow(ctx, flightID)
		return trailMsg{flightID: flightID, trail: t, applied: applied, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case locationMsg:
		first := !m.located
		m.location = msg.loc
		m.located = true
		m.bounds = domain.BoundsAround(msg.loc.Coord.Lat, msg.loc.Coord.Lon, m.sess.boundsOffset)
		if first {
			return m, tea.Batch(m.refresh(), m.tick())
		}
		return m, m.refresh()

	case flightsMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.views = msg.views
		m.rejected = msg.res.Rejected
		m.throttled = msg.res.Throttled
		if m.cursor >= len(m.views) {
			m.cursor = max(len(m.views)-1, 0)
		}
		m.syncSelection(msg.res.Flights)
		return m, nil

	case trailMsg:
		if !msg.applied || m.selectedView == nil || msg.flightID != m.selectedView.Flight.FlightID {
			return m, nil
		}
		if msg.err != nil {
			m.trail, m.trailErr = nil, msg.err
			return m, nil
		}
		t := msg.trail
		m.trail, m.trailErr = &t, nil
		return m, nil

	case tickMsg:
		if !m.located {
			return m, m.tick()
		}
		return m, tea.Batch(m.refresh(), m.tick())
	}
	return m, nil
}

// syncSelection refreshes the selected flight from a new list, or drops the
// selection when the flight has left the box.
func (m *model) syncSelection(list []domain.FlightRecord) {
	if m.selected == "" {
		return
	}
	if _, ok := domain.FindByIdentifier(list, m.selected); !ok {
		m.clearSelection()
		return
	}
	for i := range m.views {
		if m.views[i].Flight.Identifier == m.selected {
			v := m.views[i]
			m.selectedView = &v
			return
		}
	}
}

func (m *model) clearSelection() {
	m.selected = ""
	m.selectedView = nil
	m.trail = nil
	m.trailErr = nil
	m.sess.follower.Clear()
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.sess.follower.Clear()
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.views)-1 {
			m.cursor++
		}
	case "enter", " ":
		if m.cursor >= len(m.views) {
			return m, nil
		}
		v := m.views[m.cursor]
		m.selected = v.Flight.Identifier
		m.selectedView = &v
		m.trail, m.trailErr = nil, nil
		if v.Flight.FlightID == "" {
			m.sess.follower.Clear()
			return m, nil
		}
		return m, m.followTrail(v.Flight.FlightID)
	case "esc":
		m.clearSelection()
	case "r":
		if m.located {
			return m, m.refresh()
		}
	case "l":
		return m, m.locate()
	}
	return m, nil
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	cursorStyle   = lipgloss.NewStyle().Background(lipgloss.Color("237"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	panelStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

func (m model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("FLIGHTWATCH"))
	s.WriteString("\n")
	if !m.located {
		s.WriteString(helpStyle.Render("Locating..."))
		s.WriteString("\n")
		return s.String()
	}
	s.WriteString(fmt.Sprintf("%s  %s\n", headerStyle.Render(m.location.Name), helpStyle.Render(m.bounds.String())))
	s.WriteString(m.statusLine())
	s.WriteString("\n\n")

	s.WriteString(m.listView())
	if m.selectedView != nil {
		s.WriteString("\n")
		s.WriteString(panelStyle.Render(m.detailView(*m.selectedView)))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("↑/↓: move  enter: select  esc: clear  r: refresh  l: update location  q: quit"))
	s.WriteString("\n")
	return s.String()
}

func (m model) statusLine() string {
	st := m.sess.flights.State()
	parts := []string{fmt.Sprintf("%d flights", len(m.views))}
	if m.rejected > 0 {
		parts = append(parts, fmt.Sprintf("%d rejected", m.rejected))
	}
	if !st.LastFetch.IsZero() {
		parts = append(parts, "updated "+st.LastFetch.Local().Format("15:04:05"))
	}
	line := helpStyle.Render(strings.Join(parts, " · "))
	switch {
	case st.Loading:
		line += "  " + warnStyle.Render("loading")
	case m.throttled:
		line += "  " + warnStyle.Render("throttled")
	}
	if m.err != nil {
		line += "\n" + errStyle.Render("Error: "+m.err.Error())
	}
	return line
}

func (m model) listView() string {
	if len(m.views) == 0 {
		return helpStyle.Render("  No flights in view") + "\n"
	}
	var s strings.Builder
	s.WriteString(headerStyle.Render(fmt.Sprintf("  %-9s %-22s %-9s %8s %7s %5s", "FLIGHT", "AIRLINE", "ROUTE", "ALT", "SPD", "PROG")))
	s.WriteString("\n")
	for i, v := range m.views {
		line := fmt.Sprintf("  %-9s %-22s %-9s %8s %7s %4d%%",
			v.Flight.Identifier,
			truncate(v.AirlineName, 22),
			v.Flight.OriginCode+"-"+v.Flight.DestCode,
			v.AltitudeDisplay,
			fmt.Sprintf("%dkm/h", v.GroundSpeedKmh),
			v.ProgressPercent,
		)
		if v.Flight.Identifier == m.selected {
			line = selectedStyle.Render(line)
		}
		if i == m.cursor {
			line = cursorStyle.Render(line)
		}
		s.WriteString(line)
		s.WriteString("\n")
	}
	return s.String()
}

func (m model) detailView(v domain.FlightView) string {
	var s strings.Builder
	s.WriteString(headerStyle.Render(v.Flight.Identifier + "  " + v.AirlineName))
	s.WriteString("\n")
	fmt.Fprintf(&s, "%s (%s) → %s (%s)\n", v.OriginCity, v.Flight.OriginCode, v.DestCity, v.Flight.DestCode)

	progress := fmt.Sprintf("%d%%", v.ProgressPercent)
	if !v.ProgressKnown {
		progress += " (estimated)"
	}
	fmt.Fprintf(&s, "Progress   %s\n", progress)
	if v.TotalDistanceKm != nil {
		fmt.Fprintf(&s, "Distance   %s km total", domain.FormatWhole(*v.TotalDistanceKm))
		if v.DistanceToDestKm != nil {
			fmt.Fprintf(&s, ", %s km to go", domain.FormatWhole(*v.DistanceToDestKm))
		}
		s.WriteString("\n")
	}
	if v.TimeToDestination != "" {
		fmt.Fprintf(&s, "Remaining  %s\n", v.TimeToDestination)
	}
	fmt.Fprintf(&s, "Altitude   %s  V/S %s\n", v.AltitudeDisplay, v.VerticalSpeed)
	fmt.Fprintf(&s, "Aircraft   %s", v.AircraftType)
	if v.Flight.Registration != "" {
		fmt.Fprintf(&s, " (%s)", v.Flight.Registration)
	}
	s.WriteString("\n")
	if v.ETA != "" {
		fmt.Fprintf(&s, "ETA        %s UTC\n", v.ETA)
	}

	switch {
	case m.trailErr != nil:
		s.WriteString(errStyle.Render("Trail unavailable: " + m.trailErr.Error()))
	case m.trail != nil:
		fmt.Fprintf(&s, "Trail      %d points", len(m.trail.Points))
	case v.Flight.FlightID != "":
		s.WriteString(helpStyle.Render("Loading trail..."))
	}
	return s.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
