package preview

import (
	"fmt"
	"image/color"

	"github.com/chazu/snapjoin/pkg/snap"
)

// tintAlpha keeps the preview ghost translucent (0.3 opacity).
const tintAlpha = 77

// Tint returns the feedback colour for a connection state.
func Tint(s snap.ConnectionState) color.NRGBA {
	switch s {
	case snap.NoConnections:
		return color.NRGBA{G: 255, A: tintAlpha}
	case snap.BlockingWithItself:
		return color.NRGBA{R: 255, A: tintAlpha}
	case snap.SocketsTooFar:
		return color.NRGBA{R: 255, G: 235, B: 4, A: tintAlpha}
	case snap.OneSocketAligned:
		return color.NRGBA{R: 255, B: 255, A: tintAlpha}
	case snap.Aligned:
		return color.NRGBA{B: 255, A: tintAlpha}
	}
	panic(fmt.Sprintf("preview: no tint for connection state %d", int(s)))
}
