package constants

import "time"

// Status Bar
const (
	// StatusBarHeight is the number of rows reserved below the field
	StatusBarHeight = 1

	// StatusMessageTimeout is how long a status message stays visible
	StatusMessageTimeout = 4 * time.Second

	// StatusHelp lists the playback keys
	StatusHelp = "[space] play/pause  [h/l] step  [H/L] x10  [0] restart  [$] end  [-/+] speed  [r] reload  [q] quit"
)

// Field Glyphs
const (
	GlyphBody   = '█'
	GlyphPellet = '•'
	GlyphEmpty  = ' '
)

// CellAspect is the height of a terminal cell relative to its width
const CellAspect = 2.0
