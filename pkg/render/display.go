package render

// Display receives finished frames.
type Display interface {
	Present(fb *Framebuffer) error
}

// DisplayFunc adapts a function to the Display interface.
type DisplayFunc func(fb *Framebuffer) error

// Present calls f(fb).
func (f DisplayFunc) Present(fb *Framebuffer) error {
	return f(fb)
}

// FileDisplay writes every frame to an image file. The format follows the
// extension: .png or .bmp.
type FileDisplay struct {
	Path string
}

// Present saves fb to d.Path.
func (d FileDisplay) Present(fb *Framebuffer) error {
	return fb.Save(d.Path)
}
