package amidar

// EnemySummary is one row of a Summary.
type EnemySummary struct {
	Index    int        `json:"index"`
	Protocol Protocol   `json:"protocol"`
	Position WorldPoint `json:"position"`
	Caught   bool       `json:"caught"`
	Speed    int        `json:"speed"`
}

// Summary is a read-only digest of the game, for operators and agents.
type Summary struct {
	Score      int            `json:"score"`
	Lives      int            `json:"lives"`
	Level      int            `json:"level"`
	Jumps      int            `json:"jumps"`
	Mode       Mode           `json:"mode"`
	JumpTimer  int            `json:"jump_timer"`
	ChaseTimer int            `json:"chase_timer"`
	Player     WorldPoint     `json:"player"`
	Width      int            `json:"width"`
	Height     int            `json:"height"`
	Painted    int            `json:"painted"`
	Unpainted  int            `json:"unpainted"`
	Enemies    []EnemySummary `json:"enemies"`
}

// CurrentMode returns the running mode. Chase wins over jump.
func (g *Game) CurrentMode() Mode {
	switch {
	case g.chaseTimer > 0:
		return ModeChase
	case g.jumpTimer > 0:
		return ModeJump
	}
	return ModeRegular
}

// Summarize builds a Summary of g.
func Summarize(g *Game) Summary {
	s := Summary{
		Score:      g.Score(),
		Lives:      g.Lives(),
		Level:      g.Level(),
		Jumps:      g.jumps,
		Mode:       g.CurrentMode(),
		JumpTimer:  g.jumpTimer,
		ChaseTimer: g.chaseTimer,
		Player:     g.player.Position(),
		Width:      g.board.Width(),
		Height:     g.board.Height(),
		Enemies:    make([]EnemySummary, 0, g.enemies.Len()),
	}
	for _, tile := range g.board.All() {
		switch tile.Tag() {
		case Painted:
			s.Painted++
		case Unpainted:
			s.Unpainted++
		}
	}
	for i, e := range g.enemies.Items() {
		s.Enemies = append(s.Enemies, EnemySummary{
			Index:    i,
			Protocol: e.AI().Protocol(),
			Position: e.Position(),
			Caught:   e.Caught(),
			Speed:    e.Speed(),
		})
	}
	return s
}
