package world

// TokenKind classifies a tile occupant.
type TokenKind int

const (
	// TokenNone is an empty slot. It is never an occupant.
	TokenNone TokenKind = iota
	TokenPlayer
	TokenMonster
	TokenItem
)

// String returns a human-readable kind name.
func (k TokenKind) String() string {
	switch k {
	case TokenPlayer:
		return "player"
	case TokenMonster:
		return "monster"
	case TokenItem:
		return "item"
	case TokenNone:
		return "none"
	default:
		return "unknown"
	}
}

// Token is an occupant marker. Tokens are plain values and hold no reference
// to the tile they sit on.
type Token struct {
	Kind TokenKind `json:"kind"`
}

// StackCapacity bounds the number of tokens a single tile can hold.
const StackCapacity = 100

// TileStack holds the tokens on one tile in insertion order. Index 0 is the
// bottom of the stack.
type TileStack struct {
	tokens []Token
}

// Len returns the number of tokens in the stack.
func (s *TileStack) Len() int {
	return len(s.tokens)
}

// Push places a token on top of the stack. Pushing a TokenNone does nothing.
// Exceeding StackCapacity is an invariant violation.
func (s *TileStack) Push(t Token) {
	if t.Kind == TokenNone {
		return
	}
	if len(s.tokens) >= StackCapacity {
		violate("stack.push", "stack full at %d tokens", StackCapacity)
	}
	s.tokens = append(s.tokens, t)
}

// HasPlayer reports whether a player token is on the stack.
func (s *TileStack) HasPlayer() bool {
	return s.Count(TokenPlayer) > 0
}

// Count returns how many tokens of the given kind are on the stack.
func (s *TileStack) Count(kind TokenKind) int {
	n := 0
	for _, t := range s.tokens {
		if t.Kind == kind {
			n++
		}
	}
	return n
}

// RemovePlayer removes the lowest player token and keeps the order of the
// remaining tokens. It reports whether a player token was found.
func (s *TileStack) RemovePlayer() bool {
	for i, t := range s.tokens {
		if t.Kind == TokenPlayer {
			s.tokens = append(s.tokens[:i], s.tokens[i+1:]...)
			return true
		}
	}
	return false
}

// Top returns the topmost token, or a TokenNone token when empty.
func (s *TileStack) Top() Token {
	if len(s.tokens) == 0 {
		return Token{Kind: TokenNone}
	}
	return s.tokens[len(s.tokens)-1]
}

// Tokens returns a copy of the stack, bottom first.
func (s *TileStack) Tokens() []Token {
	out := make([]Token, len(s.tokens))
	copy(out, s.tokens)
	return out
}

// Clone returns a stack that shares no storage with s.
func (s *TileStack) Clone() TileStack {
	if len(s.tokens) == 0 {
		return TileStack{}
	}
	return TileStack{tokens: s.Tokens()}
}
