// Package hexgrid wraps the H3 hexagonal grid library behind string cell
// indexes and plain coordinates, keeping H3 types out of the rest of the
// codebase.
package hexgrid

import (
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	h3 "github.com/uber/h3-go/v4"

	"github.com/sells-group/prospect-cli/internal/model"
)

// DefaultResolution is H3 resolution 8 (cells roughly 460m across), matching
// the ~500m Places search radius used per cell.
const DefaultResolution = 8

// Grid resolves hexagon cell indexes at a fixed H3 resolution.
type Grid struct {
	resolution int
}

// New creates a Grid at the given H3 resolution (0-15).
func New(resolution int) (*Grid, error) {
	if resolution < 0 || resolution > 15 {
		return nil, eris.Errorf("hexgrid: resolution %d out of range [0,15]", resolution)
	}
	return &Grid{resolution: resolution}, nil
}

// Resolution returns the grid's H3 resolution.
func (g *Grid) Resolution() int {
	return g.resolution
}

// parseCell converts the hex string form of an H3 index into a cell.
func parseCell(hexagonID string) (h3.Cell, error) {
	idx, err := strconv.ParseUint(hexagonID, 16, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "hexgrid: parse cell %q", hexagonID)
	}
	cell := h3.Cell(idx)
	if !cell.IsValid() {
		return 0, eris.Errorf("hexgrid: %q is not a valid cell index", hexagonID)
	}
	return cell, nil
}

// CellToString returns the canonical string form of a cell index.
func CellToString(cell h3.Cell) string {
	return strconv.FormatUint(uint64(cell), 16)
}

// ValidCell reports whether hexagonID is a well-formed H3 cell index.
func ValidCell(hexagonID string) bool {
	_, err := parseCell(hexagonID)
	return err == nil
}

// Center returns the center coordinate of a hexagon cell.
func (g *Grid) Center(hexagonID string) (model.Location, error) {
	cell, err := parseCell(hexagonID)
	if err != nil {
		return model.Location{}, err
	}
	latLng, err := h3.CellToLatLng(cell)
	if err != nil {
		return model.Location{}, eris.Wrapf(err, "hexgrid: center of %s", hexagonID)
	}
	return model.Location{Lat: latLng.Lat, Lng: latLng.Lng}, nil
}

// Boundary returns the cell's polygon boundary as a closed ring in lng/lat
// order, ready for GeoJSON encoding.
func (g *Grid) Boundary(hexagonID string) (*geom.Polygon, error) {
	cell, err := parseCell(hexagonID)
	if err != nil {
		return nil, err
	}
	boundary, err := h3.CellToBoundary(cell)
	if err != nil {
		return nil, eris.Wrapf(err, "hexgrid: boundary of %s", hexagonID)
	}

	ring := make([]geom.Coord, 0, len(boundary)+1)
	for _, vertex := range boundary {
		ring = append(ring, geom.Coord{vertex.Lng, vertex.Lat})
	}
	if len(ring) > 0 {
		ring = append(ring, ring[0])
	}

	polygon := geom.NewPolygon(geom.XY)
	if _, err := polygon.SetCoords([][]geom.Coord{ring}); err != nil {
		return nil, eris.Wrapf(err, "hexgrid: build polygon for %s", hexagonID)
	}
	return polygon, nil
}

// CellsForViewport returns the cell indexes covering a viewport bounding box
// at the grid's resolution.
func (g *Grid) CellsForViewport(swLat, swLng, neLat, neLng float64) ([]string, error) {
	if swLat > neLat || swLng > neLng {
		return nil, eris.New("hexgrid: viewport southwest corner must be south-west of northeast corner")
	}

	loop := h3.GeoLoop{
		{Lat: swLat, Lng: swLng},
		{Lat: swLat, Lng: neLng},
		{Lat: neLat, Lng: neLng},
		{Lat: neLat, Lng: swLng},
	}
	cells, err := h3.PolygonToCells(h3.GeoPolygon{GeoLoop: loop}, g.resolution)
	if err != nil {
		return nil, eris.Wrap(err, "hexgrid: polygon to cells")
	}

	ids := make([]string, 0, len(cells))
	for _, cell := range cells {
		ids = append(ids, CellToString(cell))
	}
	return ids, nil
}

// CellForLocation returns the cell index containing a coordinate.
func (g *Grid) CellForLocation(loc model.Location) (string, error) {
	cell, err := h3.LatLngToCell(h3.LatLng{Lat: loc.Lat, Lng: loc.Lng}, g.resolution)
	if err != nil {
		return "", eris.Wrap(err, "hexgrid: lat/lng to cell")
	}
	return CellToString(cell), nil
}
