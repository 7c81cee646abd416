package scene

import (
	"strconv"
	"strings"

	apperrors "network-journal/backend/pkg/errors"
)

// NodeSize scales every node radius
type NodeSize int

const (
	SizeSmall NodeSize = iota
	SizeNormal
	SizeLarge
)

// AnimationSpeed scales how quickly the simulation cools
type AnimationSpeed int

const (
	SpeedSlow AnimationSpeed = iota
	SpeedNormal
	SpeedFast
)

// Gravity scales the pull toward the viewport centre
type Gravity int

const (
	GravityWeak Gravity = iota
	GravityNormal
	GravityStrong
)

// Spring scales link stiffness
type Spring int

const (
	SpringLoose Spring = iota
	SpringNormal
	SpringTight
)

type enumTable struct {
	option string
	names  []string
	values []float64
}

func (e enumTable) name(i int) string {
	if i < 0 || i >= len(e.names) {
		return e.names[1]
	}
	return e.names[i]
}

func (e enumTable) value(i int) float64 {
	if i < 0 || i >= len(e.values) {
		return e.values[1]
	}
	return e.values[i]
}

func (e enumTable) parse(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range e.names {
		if n == s {
			return i, nil
		}
	}
	return 0, apperrors.NewInvalidOption(e.option, s)
}

var (
	sizeTable    = enumTable{"node_size", []string{"small", "normal", "large"}, []float64{0.8, 1.0, 1.3}}
	speedTable   = enumTable{"animation_speed", []string{"slow", "normal", "fast"}, []float64{0.5, 1.0, 2.0}}
	gravityTable = enumTable{"gravity_strength", []string{"weak", "normal", "strong"}, []float64{0.5, 1.0, 1.5}}
	springTable  = enumTable{"spring_strength", []string{"loose", "normal", "tight"}, []float64{0.6, 1.0, 1.4}}
)

func (s NodeSize) String() string { return sizeTable.name(int(s)) }
func (s NodeSize) Multiplier() float64 { return sizeTable.value(int(s)) }
func (s AnimationSpeed) String() string { return speedTable.name(int(s)) }
func (s AnimationSpeed) Multiplier() float64 { return speedTable.value(int(s)) }
func (g Gravity) String() string { return gravityTable.name(int(g)) }
func (g Gravity) Multiplier() float64 { return gravityTable.value(int(g)) }
func (s Spring) String() string { return springTable.name(int(s)) }
func (s Spring) Multiplier() float64 { return springTable.value(int(s)) }

// ParseNodeSize parses small, normal or large
func ParseNodeSize(s string) (NodeSize, error) {
	i, err := sizeTable.parse(s)
	return NodeSize(i), err
}

// ParseAnimationSpeed parses slow, normal or fast
func ParseAnimationSpeed(s string) (AnimationSpeed, error) {
	i, err := speedTable.parse(s)
	return AnimationSpeed(i), err
}

// ParseGravity parses weak, normal or strong
func ParseGravity(s string) (Gravity, error) {
	i, err := gravityTable.parse(s)
	return Gravity(i), err
}

// ParseSpring parses loose, normal or tight
func ParseSpring(s string) (Spring, error) {
	i, err := springTable.parse(s)
	return Spring(i), err
}

func (s NodeSize) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *NodeSize) UnmarshalText(b []byte) (err error) {
	*s, err = ParseNodeSize(string(b))
	return err
}

func (s AnimationSpeed) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *AnimationSpeed) UnmarshalText(b []byte) (err error) {
	*s, err = ParseAnimationSpeed(string(b))
	return err
}

func (g Gravity) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

func (g *Gravity) UnmarshalText(b []byte) (err error) {
	*g, err = ParseGravity(string(b))
	return err
}

func (s Spring) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Spring) UnmarshalText(b []byte) (err error) {
	*s, err = ParseSpring(string(b))
	return err
}

// Options are the presentation and physics options of the view
type Options struct {
	ShowLabels     bool           `json:"show_labels"`
	ShowGlow       bool           `json:"show_glow"`
	NodeSize       NodeSize       `json:"node_size"`
	LinkOpacity    float64        `json:"link_opacity"`
	AnimationSpeed AnimationSpeed `json:"animation_speed"`
	Gravity        Gravity        `json:"gravity_strength"`
	Spring         Spring         `json:"spring_strength"`
}

// DefaultOptions returns the options a fresh view starts with
func DefaultOptions() Options {
	return Options{
		ShowLabels:     true,
		ShowGlow:       true,
		NodeSize:       SizeNormal,
		LinkOpacity:    0.6,
		AnimationSpeed: SpeedNormal,
		Gravity:        GravityNormal,
		Spring:         SpringNormal,
	}
}

// Validate checks the numeric options
func (o Options) Validate() error {
	if o.LinkOpacity < 0 || o.LinkOpacity > 1 {
		return apperrors.NewInvalidOption("link_opacity", strconv.FormatFloat(o.LinkOpacity, 'g', -1, 64))
	}
	return nil
}

const (
	// OwnerRadius is the base radius of the focal node
	OwnerRadius = 35.0
	// NodeRadius is the base radius of every other node
	NodeRadius = 25.0
)

// BaseRadius is the node radius before emphasis
func (o Options) BaseRadius(n *Node) float64 {
	r := NodeRadius
	if n.Focal {
		r = OwnerRadius
	}
	return r * o.NodeSize.Multiplier()
}

// EffectiveRadius is the drawn and hit-tested radius of a node
func (o Options) EffectiveRadius(n *Node, selected, dragged bool) float64 {
	r := o.BaseRadius(n) * (1 + n.Pulse*0.15)
	if selected {
		r *= 1.2
	}
	if dragged {
		r *= 1.15
	}
	return r
}
