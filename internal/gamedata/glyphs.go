package gamedata

import (
	"fmt"
	"io/fs"

	"github.com/gdamore/tcell/v2"

	"github.com/rngking/rathttp/internal/world"
)

// GlyphDef defines how one tile kind, door state or token kind is drawn.
type GlyphDef struct {
	ID    string `json:"id"`    // Matches the String() of the world kind (e.g., "wall")
	Name  string `json:"name"`  // Display name used in tooltips
	Glyph string `json:"glyph"` // Single character for rendering
	Color string `json:"color"` // Hex color (e.g., "#FF0000")
}

// GlyphsFile represents the structure of glyphs.json.
type GlyphsFile struct {
	Tiles  []GlyphDef `json:"tiles"`
	Doors  []GlyphDef `json:"doors"`
	Tokens []GlyphDef `json:"tokens"`
}

// Glyph is a parsed, ready-to-draw glyph.
type Glyph struct {
	Name  string
	Rune  rune
	Color tcell.Color
}

// CSS returns the glyph color as a CSS hex string.
func (g Glyph) CSS() string {
	return HexString(g.Color)
}

// GlyphSet resolves world state to glyphs.
type GlyphSet struct {
	tiles  map[string]Glyph
	doors  map[string]Glyph
	tokens map[string]Glyph
}

// LoadGlyphs loads the glyph set from the embedded glyphs.json file.
func LoadGlyphs() (*GlyphSet, error) {
	file, err := Load[GlyphsFile]("glyphs.json")
	if err != nil {
		return nil, err
	}
	return NewGlyphSet(file)
}

// LoadGlyphsFrom loads a glyph set from a JSON file in fsys.
func LoadGlyphsFrom(fsys fs.FS, filename string) (*GlyphSet, error) {
	file, err := LoadFrom[GlyphsFile](fsys, filename)
	if err != nil {
		return nil, err
	}
	return NewGlyphSet(file)
}

// MustLoadGlyphs loads the glyph set, panicking on error.
func MustLoadGlyphs() *GlyphSet {
	set, err := LoadGlyphs()
	if err != nil {
		panic(err)
	}
	return set
}

// NewGlyphSet parses glyph definitions. Every definition needs a glyph and a
// valid color.
func NewGlyphSet(file GlyphsFile) (*GlyphSet, error) {
	set := &GlyphSet{}
	var err error
	if set.tiles, err = parseGlyphs("tiles", file.Tiles); err != nil {
		return nil, err
	}
	if set.doors, err = parseGlyphs("doors", file.Doors); err != nil {
		return nil, err
	}
	if set.tokens, err = parseGlyphs("tokens", file.Tokens); err != nil {
		return nil, err
	}
	return set, nil
}

func parseGlyphs(section string, defs []GlyphDef) (map[string]Glyph, error) {
	out := make(map[string]Glyph, len(defs))
	for _, d := range defs {
		runes := []rune(d.Glyph)
		if len(runes) != 1 {
			return nil, fmt.Errorf("%s.%s: glyph %q must be a single character", section, d.ID, d.Glyph)
		}
		color, err := ParseHexColor(d.Color)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", section, d.ID, err)
		}
		out[d.ID] = Glyph{Name: d.Name, Rune: runes[0], Color: color}
	}
	return out, nil
}

var unknownGlyph = Glyph{Name: "Unknown", Rune: '?', Color: tcell.ColorFuchsia}

// ForTile returns the terrain glyph for a tile kind and door state.
func (s *GlyphSet) ForTile(kind world.TileKind, door world.DoorState) Glyph {
	var g Glyph
	var ok bool
	if kind == world.TileDoor {
		g, ok = s.doors[door.String()]
	} else {
		g, ok = s.tiles[kind.String()]
	}
	if !ok {
		return unknownGlyph
	}
	return g
}

// ForToken returns the glyph for a token kind.
func (s *GlyphSet) ForToken(kind world.TokenKind) Glyph {
	if g, ok := s.tokens[kind.String()]; ok {
		return g
	}
	return unknownGlyph
}

// Cell returns the glyph shown for a tile: its top token if any, otherwise
// its terrain.
func (s *GlyphSet) Cell(v world.TileView) Glyph {
	if top := v.Top(); top.Kind != world.TokenNone {
		return s.ForToken(top.Kind)
	}
	return s.ForTile(v.Kind, v.Door)
}
