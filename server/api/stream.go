package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/tashkeel/logger"
	"github.com/kbukum/tashkeel/tashkeel"
)

// Server-sent event names of the stream endpoint.
const (
	EventResult = "result"
	EventDone   = "done"
)

// StreamResult is the data of a result event. Results arrive in completion
// order; Index is the position of the input in the request.
type StreamResult struct {
	Index int `json:"index"`
	BatchItem
}

// StreamDone is the data of the final event.
type StreamDone struct {
	Total  int `json:"total"`
	Failed int `json:"failed"`
}

type indexedOutcome struct {
	index int
	tashkeel.Outcome
}

// diacritizeStream runs a batch through a Dispatcher and streams each
// outcome as it completes. A client that goes away stops the stream but not
// the calls already started.
func (h *Handler) diacritizeStream(c *gin.Context) {
	req, ok := h.bindBatch(c)
	if !ok {
		return
	}
	e, ok := h.engine(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	log := h.log.WithContext(ctx)

	// Long batches must outlive the server's write timeout.
	if err := http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{}); err != nil {
		log.Debug("Could not clear write deadline", logger.ErrorFields("stream", err))
	}
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	d := tashkeel.NewDispatcher(e, tashkeel.WithMaxConcurrent(h.cfg.BatchConcurrency))
	done := make(chan indexedOutcome, len(req.Texts))
	for i, text := range req.Texts {
		ch := d.Submit(ctx, text)
		go func() { done <- indexedOutcome{index: i, Outcome: <-ch} }()
	}

	summary := StreamDone{Total: len(req.Texts)}
	for range req.Texts {
		select {
		case <-ctx.Done():
			log.Debug("Stream client went away", logger.Fields("total", summary.Total))
			return
		case o := <-done:
			item := batchItem(e, o.Outcome, req.FallbackOnError)
			if item.Error != nil {
				summary.Failed++
			}
			c.SSEvent(EventResult, StreamResult{Index: o.index, BatchItem: item})
			c.Writer.Flush()
		}
	}
	c.SSEvent(EventDone, summary)
	c.Writer.Flush()
}
