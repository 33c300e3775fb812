package device

import "github.com/gogpu/gputypes"

// BytesPerTexel returns the size of one texel of an uncompressed color or
// depth format. The second result is false for formats the core does not
// upload from the CPU.
func BytesPerTexel(f gputypes.TextureFormat) (uint32, bool) {
	switch f {
	case gputypes.TextureFormatR8Unorm, gputypes.TextureFormatR8Uint:
		return 1, true
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatRGBA8UnormSrgb,
		gputypes.TextureFormatBGRA8Unorm, gputypes.TextureFormatBGRA8UnormSrgb,
		gputypes.TextureFormatDepth32Float:
		return 4, true
	default:
		return 0, false
	}
}

// ChooseSurfaceFormat picks the frame target format from the formats a
// surface supports: the first sRGB format if there is one, otherwise the
// first format. An empty list yields BGRA8UnormSrgb.
func ChooseSurfaceFormat(supported []gputypes.TextureFormat) gputypes.TextureFormat {
	for _, f := range supported {
		if f.IsSrgb() {
			return f
		}
	}
	if len(supported) > 0 {
		return supported[0]
	}
	return gputypes.TextureFormatBGRA8UnormSrgb
}
