package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"time"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/dtroode/heartcare-server/internal/logger"
	"github.com/dtroode/heartcare-server/internal/model"
)

// InputSize is the square edge, in pixels, the model expects.
const InputSize = 180

var _ model.Classifier = (*Client)(nil)

// Client calls a TensorFlow Serving REST predict endpoint.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *logger.Logger
}

// NewClient builds a client for <baseURL>/v1/models/<modelName>:predict.
func NewClient(baseURL, modelName string, httpClient *http.Client, logger *logger.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse classifier url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("classifier url %q must be absolute", baseURL)
	}
	u = u.JoinPath("v1", "models", modelName+":predict")

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		endpoint: u.String(),
		http:     httpClient,
		logger:   logger,
	}, nil
}

type predictRequest struct {
	Instances [][][][3]float32 `json:"instances"`
}

type predictResponse struct {
	Predictions [][]float64 `json:"predictions"`
	Error       string      `json:"error"`
}

// Classify returns the most probable label and its probability in percent.
// Every failure wraps model.ErrClassifierUnavailable.
func (c *Client) Classify(ctx context.Context, img []byte) (model.Label, float64, error) {
	pixels, err := preprocess(img)
	if err != nil {
		return model.LabelUnavailable, 0, fmt.Errorf("%w: %v", model.ErrClassifierUnavailable, err)
	}

	body, err := json.Marshal(predictRequest{Instances: [][][][3]float32{pixels}})
	if err != nil {
		return model.LabelUnavailable, 0, fmt.Errorf("%w: failed to encode request: %v", model.ErrClassifierUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return model.LabelUnavailable, 0, fmt.Errorf("%w: %v", model.ErrClassifierUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return model.LabelUnavailable, 0, fmt.Errorf("%w: request failed: %v", model.ErrClassifierUnavailable, err)
	}
	defer resp.Body.Close()

	var out predictResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return model.LabelUnavailable, 0, fmt.Errorf("%w: failed to decode response (status %d): %v",
			model.ErrClassifierUnavailable, resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		return model.LabelUnavailable, 0, fmt.Errorf("%w: status %d: %s",
			model.ErrClassifierUnavailable, resp.StatusCode, out.Error)
	}
	if len(out.Predictions) == 0 || len(out.Predictions[0]) != len(model.Labels) {
		return model.LabelUnavailable, 0, fmt.Errorf("%w: unexpected prediction shape", model.ErrClassifierUnavailable)
	}

	scores := softmax(out.Predictions[0])
	best := argmax(scores)

	c.logger.Debug("Classifier: prediction received",
		"label", model.Labels[best],
		"score", scores[best],
		"duration", time.Since(start))

	return model.Labels[best], scores[best] * 100, nil
}

// preprocess decodes img and samples it down to InputSize x InputSize RGB
// values in the 0..255 range.
func preprocess(img []byte) ([][][3]float32, error) {
	src, _, err := image.Decode(bytes.NewReader(img))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, InputSize, InputSize))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	pixels := make([][][3]float32, InputSize)
	for y := 0; y < InputSize; y++ {
		row := make([][3]float32, InputSize)
		for x := 0; x < InputSize; x++ {
			c := dst.NRGBAAt(x, y)
			row[x] = [3]float32{float32(c.R), float32(c.G), float32(c.B)}
		}
		pixels[y] = row
	}

	return pixels, nil
}
