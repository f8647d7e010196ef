// Package record encodes rendered frames to a video file by piping raw RGBA
// into an ffmpeg process.
package record

import (
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/taigrr/ouroboros/pkg/render"
)

// Errors returned by Recorder.
var (
	// ErrClosed is returned by WriteFrame after Close.
	ErrClosed = errors.New("recorder closed")
	// ErrFrameSize is returned when a frame differs from Options.Width×Height.
	ErrFrameSize = errors.New("frame size does not match recording")
	// ErrBadOptions is returned by Start for unusable options.
	ErrBadOptions = errors.New("invalid recording options")
)

// Options describes an output video.
type Options struct {
	Path       string
	Width      int
	Height     int
	FPS        int
	Codec      string // "h264" (default) or "hevc"
	Bitrate    string // e.g. "8M"; empty lets the encoder choose
	FFmpegPath string // empty uses ffmpeg from PATH
}

func (o Options) validate() error {
	switch {
	case o.Path == "":
		return fmt.Errorf("%w: empty output path", ErrBadOptions)
	case o.Width <= 0 || o.Height <= 0:
		return fmt.Errorf("%w: size %dx%d", ErrBadOptions, o.Width, o.Height)
	case o.Width%2 != 0 || o.Height%2 != 0:
		// yuv420p needs even dimensions.
		return fmt.Errorf("%w: size %dx%d must be even", ErrBadOptions, o.Width, o.Height)
	case o.FPS <= 0:
		return fmt.Errorf("%w: fps %d", ErrBadOptions, o.FPS)
	case o.Codec != "" && o.Codec != "h264" && o.Codec != "hevc":
		return fmt.Errorf("%w: codec %q", ErrBadOptions, o.Codec)
	}
	return nil
}

// args builds the ffmpeg input and output arguments.
func (o Options) args() (inputArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"f":       "rawvideo",
		"pix_fmt": "rgba",
		"s":       fmt.Sprintf("%dx%d", o.Width, o.Height),
		"r":       o.FPS,
	}

	outputArgs = ffmpeg.KwArgs{"pix_fmt": "yuv420p"}
	if o.Codec == "hevc" {
		outputArgs["c:v"] = "libx265"
		if strings.EqualFold(filepath.Ext(o.Path), ".mp4") {
			outputArgs["tag:v"] = "hvc1"
		}
	} else {
		outputArgs["c:v"] = "libx264"
	}
	if o.Bitrate != "" {
		outputArgs["b:v"] = o.Bitrate
	}
	return
}

// Recorder streams frames to a running ffmpeg process.
type Recorder struct {
	opts   Options
	pipe   *io.PipeWriter
	errc   chan error
	buf    []byte
	frames int
	closed bool
}

// Start launches ffmpeg and returns a recorder ready for WriteFrame.
func Start(opts Options) (*Recorder, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	pipeReader, pipeWriter := io.Pipe()
	inputArgs, outputArgs := opts.args()

	cmd := ffmpeg.Input("pipe:", inputArgs).
		Output(opts.Path, outputArgs).
		OverWriteOutput().WithInput(pipeReader).ErrorToStdOut()
	if opts.FFmpegPath != "" {
		cmd = cmd.SetFfmpegPath(opts.FFmpegPath)
	}

	log.Printf("recording %dx%d@%d to %s", opts.Width, opts.Height, opts.FPS, opts.Path)
	errc := make(chan error, 1)
	go func() {
		err := cmd.Run()
		// Unblock writers if ffmpeg exits early.
		pipeReader.CloseWithError(errEncoderExited)
		errc <- err
	}()

	return &Recorder{
		opts: opts,
		pipe: pipeWriter,
		errc: errc,
		buf:  make([]byte, opts.Width*opts.Height*4),
	}, nil
}

var errEncoderExited = errors.New("encoder exited")

// Frames reports how many frames were written.
func (r *Recorder) Frames() int { return r.frames }

// WriteFrame appends fb to the video. fb must match the recording size.
func (r *Recorder) WriteFrame(fb *render.Framebuffer) error {
	if r.closed {
		return ErrClosed
	}
	if err := packRGBA(r.buf, fb, r.opts.Width, r.opts.Height); err != nil {
		return err
	}
	if _, err := r.pipe.Write(r.buf); err != nil {
		return fmt.Errorf("write frame %d: %w", r.frames, err)
	}
	r.frames++
	return nil
}

// Close flushes the stream and waits for ffmpeg to finish.
func (r *Recorder) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.pipe.Close()
	if err := <-r.errc; err != nil {
		return fmt.Errorf("ffmpeg: %w", err)
	}
	log.Printf("recorded %d frames to %s", r.frames, r.opts.Path)
	return nil
}

// packRGBA copies fb into dst after checking its size.
func packRGBA(dst []byte, fb *render.Framebuffer, w, h int) error {
	if fb == nil || fb.Width != w || fb.Height != h {
		return ErrFrameSize
	}
	fb.PackRGBA(dst)
	return nil
}
