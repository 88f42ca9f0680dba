package render

import "github.com/gdamore/tcell/v2"

// RGB color definitions for the replay field and status bar
var (
	RgbField       = tcell.NewRGBColor(0, 0, 0)       // Space
	RgbBackground  = tcell.NewRGBColor(26, 27, 38)    // Outside the field
	RgbPlanet      = tcell.NewRGBColor(0, 255, 255)   // Cyan, as the web player drew bodies
	RgbPellet      = tcell.NewRGBColor(255, 255, 200) // Bright yellow-white
	RgbShipNoColor = tcell.NewRGBColor(200, 200, 200) // Ship without an assignment

	RgbStatusBar     = tcell.NewRGBColor(135, 206, 250) // Light sky blue
	RgbStatusText    = tcell.NewRGBColor(0, 0, 0)       // Dark text for status
	RgbStatusMessage = tcell.NewRGBColor(255, 255, 255) // White
	RgbStatusError   = tcell.NewRGBColor(200, 50, 50)   // Red for load errors
)
