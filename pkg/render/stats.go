package render

// Stats counts what happened to meshes and triangles during the last frame.
type Stats struct {
	MeshesTested int // Visible meshes with a material
	MeshesCulled int // Rejected whole by the frustum
	Vertices     int // Vertices projected
	Triangles    int // Triangles considered
	Clipped      int // Entirely outside one screen side or behind the near plane
	NearCrossing int // Partly in front of the near plane
	BackFacing   int
	Invisible    int // Fully transparent without reflection
	Opaque       int
	Transparent  int
	Pixels       int // Pixels that passed the z-test
}

// Drawn returns the number of triangles handed to the rasterizer.
func (s Stats) Drawn() int {
	return s.Opaque + s.Transparent
}
