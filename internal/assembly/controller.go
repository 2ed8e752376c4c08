package assembly

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lucsky/cuid"
	"go.uber.org/zap"

	"github.com/muurk/lcdpacket/internal/catalog"
	"github.com/muurk/lcdpacket/internal/input"
	"github.com/muurk/lcdpacket/internal/logging"
	"github.com/muurk/lcdpacket/internal/packet"
)

// Menu entries after the catalog layers.
const (
	MenuRaw    = packet.RawName
	MenuFinish = "Finish"
	MenuCancel = "Cancel"
	MenuLoad   = "Load Packet"
)

// Advisory texts shown on the display.
const (
	TruncateWarning = "Warning:\nTruncating Pkt"
	NoLayersWarning = "No layers\nconfigured"
	NoFileWarning   = "No packet file\nconfigured"
)

// DefaultHold is how long an advisory stays on the display.
const DefaultHold = 2 * time.Second

// DefaultRawMessages are the preset payloads offered for the raw layer.
var DefaultRawMessages = []string{
	"Here's a message\nFinis",
	"Hello, world!",
	"-Insert message\n here-",
	"This message is\nthe longest one.",
}

var (
	// ErrNoLayers is returned by Finish when nothing has been configured.
	ErrNoLayers = errors.New("assembly: no layers configured")

	// ErrNoLoader is returned by LoadFromFile without a configured loader.
	ErrNoLoader = errors.New("assembly: no packet loader configured")
)

// state is a step of the assembly loop.
type state int

const (
	stateSelectLayer state = iota
	stateConfigureLayer
	stateConfigureRaw
	stateFinish
	stateCancel
	stateLoadFromFile
)

func (s state) String() string {
	switch s {
	case stateSelectLayer:
		return "select-layer"
	case stateConfigureLayer:
		return "configure-layer"
	case stateConfigureRaw:
		return "configure-raw"
	case stateFinish:
		return "finish"
	case stateCancel:
		return "cancel"
	case stateLoadFromFile:
		return "load-from-file"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Controller assembles a packet layer by layer on the panel.
type Controller struct {
	runner  *input.Runner
	catalog *catalog.Catalog
	builder *packet.Builder
	loader  packet.Loader
	raw     []string
	hold    time.Duration
}

// Option configures a Controller.
type Option func(*Controller)

// WithLoader sets the collaborator behind "Load Packet".
func WithLoader(l packet.Loader) Option {
	return func(c *Controller) { c.loader = l }
}

// WithRawMessages replaces the raw payload presets.
func WithRawMessages(msgs []string) Option {
	return func(c *Controller) {
		if len(msgs) > 0 {
			c.raw = append([]string(nil), msgs...)
		}
	}
}

// WithHold sets how long advisories stay on the display.
func WithHold(d time.Duration) Option {
	return func(c *Controller) { c.hold = d }
}

// New returns a Controller. cat should already have its defaults resolved.
func New(runner *input.Runner, cat *catalog.Catalog, builder *packet.Builder, opts ...Option) *Controller {
	c := &Controller{
		runner:  runner,
		catalog: cat,
		builder: builder,
		raw:     DefaultRawMessages,
		hold:    DefaultHold,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Menu returns the layer selection options in order.
func (c *Controller) Menu() []string {
	return append(c.catalog.Names(), MenuRaw, MenuFinish, MenuCancel, MenuLoad)
}

func (c *Controller) classify(choice string) state {
	switch choice {
	case MenuRaw:
		return stateConfigureRaw
	case MenuFinish:
		return stateFinish
	case MenuCancel:
		return stateCancel
	case MenuLoad:
		return stateLoadFromFile
	default:
		return stateConfigureLayer
	}
}

// Run drives one assembly session. It returns the finished packet, or a nil
// packet and nil error when the operator cancels. Layers configured before a
// cancel are discarded. The packet carries the session ID also used in the
// session's log lines. Only context cancellation and collaborator failures
// end the session with an error; a bad field value is re-edited.
func (c *Controller) Run(ctx context.Context) (*packet.Packet, error) {
	session := cuid.New()
	log := logging.GetLogger().With(zap.String("session", session))
	log.Info("Assembly started")

	menu := c.Menu()
	var stack []packet.Layer

	for {
		idx, err := c.runner.Choose(ctx, menu)
		if err != nil {
			return nil, err
		}
		choice := menu[idx]
		next := c.classify(choice)
		log.Debug("Menu choice", zap.String("choice", choice), zap.Stringer("state", next))

		switch next {
		case stateCancel:
			log.Info("Assembly cancelled", zap.Int("discarded_layers", len(stack)))
			return nil, nil

		case stateLoadFromFile:
			p, err := c.LoadFromFile(ctx)
			if errors.Is(err, ErrNoLoader) {
				if err := c.advise(ctx, NoFileWarning, "No packet file configured"); err != nil {
					return nil, err
				}
				continue
			}
			if err != nil {
				return nil, err
			}
			p.Session = session
			log.Info("Packet loaded", zap.String("packet", p.Summary()))
			return p, nil

		case stateFinish:
			p, err := c.Finish(ctx, stack)
			if errors.Is(err, ErrNoLayers) {
				continue
			}
			if err != nil {
				return nil, err
			}
			p.Session = session
			log.Info("Assembly finished", zap.String("packet", p.Summary()))
			logging.LogPacket("Finished packet", p.Names(), p.Bytes)
			return p, nil

		case stateConfigureRaw:
			l, err := c.ConfigureRaw(ctx)
			if err != nil {
				return nil, err
			}
			stack = append(stack, l)

		case stateConfigureLayer:
			spec, ok := c.catalog.Lookup(choice)
			if !ok {
				return nil, fmt.Errorf("assembly: menu entry %q is not in the catalog", choice)
			}
			l, err := c.ConfigureLayer(ctx, spec)
			if err != nil {
				return nil, err
			}
			stack = append(stack, l)
			log.Debug("Layer added", zap.Stringer("layer", l), zap.Int("depth", len(stack)))
		}
	}
}

// ConfigureLayer edits every field of spec in order. Each field starts from
// its default; a value the field's sanitize chain rejects is shown as an
// advisory and edited again from the rejected text.
func (c *Controller) ConfigureLayer(ctx context.Context, spec catalog.LayerSpec) (packet.Layer, error) {
	fields := make(map[string]string, len(spec.Fields))

	for _, f := range spec.Fields {
		seed, err := f.Seed()
		if err != nil {
			logging.Advisory("Default does not fit field, editing from zero",
				zap.String("layer", spec.Name),
				zap.String("field", f.Name),
				zap.String("default", f.Default),
				zap.Error(err))
			seed = f.Label()
		}

		for {
			text, err := c.runner.Format(ctx, f.EditTemplate(), seed)
			if err != nil && !input.IsNothingToEdit(err) {
				return packet.Layer{}, err
			}

			value, err := f.Protocol(text)
			if err == nil {
				fields[f.Name] = value
				break
			}

			logging.Warn("Field value rejected",
				zap.String("layer", spec.Name),
				zap.String("field", f.Name),
				zap.String("text", catalog.Value(text)),
				zap.Error(err))
			if err := c.show(ctx, "Invalid "+f.Name+"\n"+catalog.Value(text)); err != nil {
				return packet.Layer{}, err
			}
			seed = text
		}
	}

	return packet.NewLayer(spec.Name, fields), nil
}

// ConfigureRaw picks one of the preset messages as a raw payload layer.
func (c *Controller) ConfigureRaw(ctx context.Context) (packet.Layer, error) {
	idx, err := c.runner.Choose(ctx, c.raw)
	if err != nil {
		return packet.Layer{}, err
	}
	return packet.Raw(c.raw[idx]), nil
}

// Finish asks for the total size and builds the packet. The prompt starts at
// the natural length of stack. A smaller size truncates and raises one
// advisory; a larger one pads with null bytes. An empty stack is ErrNoLayers,
// after the operator has been told.
func (c *Controller) Finish(ctx context.Context, stack []packet.Layer) (*packet.Packet, error) {
	if len(stack) == 0 {
		if err := c.advise(ctx, NoLayersWarning, "Finish with no layers"); err != nil {
			return nil, err
		}
		return nil, ErrNoLayers
	}

	natural, err := c.builder.Length(stack)
	if err != nil {
		return nil, err
	}

	var size int
	for {
		text, err := c.runner.Format(ctx, catalog.SizePrompt, catalog.SizeSeed(natural))
		if err != nil {
			return nil, err
		}
		size, err = catalog.ParseSize(text)
		if err == nil {
			break
		}
		logging.Warn("Size rejected", zap.String("text", text), zap.Error(err))
	}

	if size < natural {
		if err := c.advise(ctx, TruncateWarning, "Requested size below natural length, truncating",
			zap.Int("natural", natural),
			zap.Int("size", size)); err != nil {
			return nil, err
		}
	}

	return c.builder.Build(stack, size)
}

// LoadFromFile skips assembly and returns the loader's packet as is.
func (c *Controller) LoadFromFile(ctx context.Context) (*packet.Packet, error) {
	if c.loader == nil {
		return nil, ErrNoLoader
	}
	return c.loader.Load(ctx)
}

// ConfigureDelay asks for the delay between packets, starting at current.
func (c *Controller) ConfigureDelay(ctx context.Context, current time.Duration) (time.Duration, error) {
	for {
		text, err := c.runner.Format(ctx, catalog.DelayPrompt, catalog.DelaySeed(current))
		if err != nil {
			return 0, err
		}
		d, err := catalog.ParseDelay(text)
		if err == nil {
			logging.Debug("Delay configured", zap.Duration("delay", d))
			return d, nil
		}
		logging.Warn("Delay rejected", zap.String("text", text), zap.Error(err))
	}
}

// advise logs an advisory and holds its text on the display.
func (c *Controller) advise(ctx context.Context, text, msg string, fields ...zap.Field) error {
	logging.Advisory(msg, fields...)
	return c.show(ctx, text)
}

func (c *Controller) show(ctx context.Context, text string) error {
	return c.runner.Show(ctx, text, c.hold)
}
