package officequotes

import (
	"context"
	"net/url"
	"strconv"
)

// Quote window radius bounds.
const (
	MinRadius     = 1
	MaxRadius     = 5
	DefaultRadius = 2
)

// WindowRequest addresses a quote and the number of neighbours wanted on each side.
// All coordinates are 1-based.
type WindowRequest struct {
	Season  int `json:"season"`
	Episode int `json:"episode"`
	Scene   int `json:"scene"`
	Quote   int `json:"quote"`
	Radius  int `json:"radius"`
}

// Window is a quote with its neighbours from the same scene.
// Above is ordered farthest to nearest, Below nearest to farthest.
type Window struct {
	Center Quote         `json:"center"`
	Above  []Quote       `json:"above"`
	Below  []Quote       `json:"below"`
	Params WindowRequest `json:"params"`
}

// WindowService answers quote window queries.
type WindowService interface {
	// Window returns the quotes surrounding the requested quote.
	// Returns ENOTFOUND if the coordinate does not exist in the corpus.
	Window(ctx context.Context, req WindowRequest) (*Window, error)
}

// requiredWindowParams lists the required query parameters in validation order.
var requiredWindowParams = []string{"season", "episode", "scene", "quote"}

// ParseWindowRequest validates query parameters into a WindowRequest.
// The first missing or invalid required parameter is reported as EINVALID
// naming that parameter. An absent or invalid radius becomes DefaultRadius;
// any radius is clamped to [MinRadius, MaxRadius].
func ParseWindowRequest(q url.Values) (WindowRequest, error) {
	var values [4]int
	for i, name := range requiredWindowParams {
		raw := q.Get(name)
		n, err := strconv.Atoi(raw)
		if raw == "" || err != nil || n < 1 {
			return WindowRequest{}, Errorf(EINVALID, "Parameter '%s' was not specified or was fed an invalid integer. (%s)", name, raw)
		}
		values[i] = n
	}

	req := WindowRequest{
		Season:  values[0],
		Episode: values[1],
		Scene:   values[2],
		Quote:   values[3],
		Radius:  ClampRadius(q.Get("radius")),
	}

	if !IsValidSeason(req.Season) {
		return WindowRequest{}, Errorf(EINVALID, "Parameter 'season' is out of range. (%d)", req.Season)
	}
	if !IsValidEpisode(req.Season, req.Episode) {
		return WindowRequest{}, Errorf(EINVALID, "Parameter 'episode' is out of range. (%d)", req.Episode)
	}
	return req, nil
}

// ClampRadius parses a radius parameter. Absent, non-integer and zero values
// yield DefaultRadius; everything else is clamped to [MinRadius, MaxRadius].
func ClampRadius(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n == 0 {
		n = DefaultRadius
	}
	return min(max(n, MinRadius), MaxRadius)
}

// Neighbors returns up to radius quotes on each side of quotes[index].
// Out-of-range neighbours are omitted rather than wrapped.
func Neighbors(quotes []Quote, index, radius int) (above, below []Quote) {
	above = make([]Quote, 0, radius)
	below = make([]Quote, 0, radius)
	for i := 1; i <= radius; i++ {
		if j := index - i; j >= 0 && j < len(quotes) {
			above = append(above, quotes[j])
		}
		if j := index + i; j >= 0 && j < len(quotes) {
			below = append(below, quotes[j])
		}
	}
	// above was collected nearest first
	for l, r := 0, len(above)-1; l < r; l, r = l+1, r-1 {
		above[l], above[r] = above[r], above[l]
	}
	return above, below
}

// NewWindow builds the window around a 1-based quote of a scene.
// Returns ENOTFOUND if the quote is outside the scene.
func NewWindow(scene *Scene, req WindowRequest) (*Window, error) {
	if req.Quote < 1 || req.Quote > len(scene.Quotes) {
		return nil, Errorf(ENOTFOUND, "quote %d of scene %d not found", req.Quote, req.Scene)
	}
	center := req.Quote - 1
	above, below := Neighbors(scene.Quotes, center, req.Radius)
	return &Window{
		Center: scene.Quotes[center],
		Above:  above,
		Below:  below,
		Params: req,
	}, nil
}
