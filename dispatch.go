//go:build !ios && !android && (amd64 || arm64)

package pdfgo

import (
	"context"
	"errors"
	"fmt"
	"image"
	"iter"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/obinnaokechukwu/pdfgo/logging"
)

// Source says where RenderMany workers open the document from. Each worker
// opens its own Document, so a Source is a path or bytes, never an open
// handle.
type Source struct {
	Path     string
	Data     []byte // used when Path is empty
	Password string
	Access   FileAccess // for Path
}

func (s Source) open() (*Document, error) {
	opts := []OpenOption{WithPassword(s.Password)}
	if s.Path != "" {
		return Open(s.Path, append(opts, WithFileAccess(s.Access))...)
	}
	if s.Data != nil {
		return OpenBytes(s.Data, opts...)
	}
	return nil, errors.New("pdfgo: source has neither path nor data")
}

// RenderFunc renders one page. The returned bitmap is closed by the caller.
type RenderFunc func(*Page) (*Bitmap, error)

// RenderWith returns a RenderFunc calling Page.Render with opts.
func RenderWith(opts RenderOptions) RenderFunc {
	return func(p *Page) (*Bitmap, error) {
		return p.Render(opts)
	}
}

// PageImage is one rendered page.
type PageImage struct {
	Index int // page index in the document
	Image image.Image
}

type renderJob struct {
	pos, index int
}

type renderResult struct {
	pos int
	img PageImage
}

// RenderMany renders pages on workers goroutines and yields them in the
// order of indices. A nil indices renders every page; workers <= 0 uses
// GOMAXPROCS. Native calls still run one at a time; workers overlap the Go
// side of the work (conversion, copying) with rendering.
//
// The first error ends the sequence and is yielded once. Stopping the loop
// early cancels the workers; RenderMany returns after they have closed
// their documents.
func RenderMany(ctx context.Context, src Source, indices []int, workers int, fn RenderFunc) iter.Seq2[PageImage, error] {
	if fn == nil {
		fn = RenderWith(DefaultRenderOptions())
	}
	return func(yield func(PageImage, error) bool) {
		if err := ctx.Err(); err != nil {
			yield(PageImage{}, err)
			return
		}
		indices := indices
		if indices == nil {
			n, err := src.pageCount()
			if err != nil {
				yield(PageImage{}, err)
				return
			}
			indices = make([]int, n)
			for i := range indices {
				indices[i] = i
			}
		}
		if len(indices) == 0 {
			return
		}
		workers := workers
		if workers <= 0 {
			workers = runtime.GOMAXPROCS(0)
		}
		workers = min(workers, len(indices))

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		g, gctx := errgroup.WithContext(ctx)

		jobs := make(chan renderJob)
		results := make(chan renderResult, workers)

		g.Go(func() error {
			defer close(jobs)
			for pos, index := range indices {
				if err := gctx.Err(); err != nil {
					return err
				}
				select {
				case jobs <- renderJob{pos, index}:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
		for w := range workers {
			g.Go(func() error {
				return renderWorker(gctx, w, src, fn, jobs, results)
			})
		}

		var werr error
		go func() {
			werr = g.Wait()
			close(results)
		}()

		pending := make(map[int]PageImage)
		next := 0
		for r := range results {
			pending[r.pos] = r.img
			for {
				img, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				next++
				if !yield(img, nil) {
					cancel()
					for range results {
					}
					return
				}
			}
		}
		if werr != nil {
			yield(PageImage{}, werr)
		}
	}
}

func renderWorker(ctx context.Context, id int, src Source, fn RenderFunc, jobs <-chan renderJob, results chan<- renderResult) error {
	doc, err := src.open()
	if err != nil {
		return err
	}
	defer doc.Close()
	logging.Logger().Debug("render worker started", "worker", id)

	for job := range jobs {
		img, err := renderPage(doc, job.index, fn)
		if err != nil {
			return fmt.Errorf("pdfgo: render page %d: %w", job.index, err)
		}
		select {
		case results <- renderResult{job.pos, PageImage{Index: job.index, Image: img}}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// renderPage renders one page and copies the pixels out, so nothing native
// outlives the call.
func renderPage(doc *Document, index int, fn RenderFunc) (image.Image, error) {
	page, err := doc.Page(index)
	if err != nil {
		return nil, err
	}
	defer page.Close()
	bmp, err := fn(page)
	if err != nil {
		return nil, err
	}
	if bmp == nil {
		return nil, errors.New("pdfgo: render function returned no bitmap")
	}
	defer bmp.Close()
	return bmp.CopyImage()
}

func (s Source) pageCount() (int, error) {
	doc, err := s.open()
	if err != nil {
		return 0, err
	}
	defer doc.Close()
	return doc.PageCount(), nil
}
