package mqtt

import (
	"github.com/kilianp07/chargeinfra/core/factory"
	coremetrics "github.com/kilianp07/chargeinfra/core/metrics"
)

// init registers the "mqtt" metrics sink.
func init() {
	_ = coremetrics.RegisterSink("mqtt", func(conf map[string]any) (coremetrics.Sink, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		c.SetDefaults()
		cli, err := NewPahoClient(c)
		if err != nil {
			return nil, err
		}
		return NewStatePublisher(cli, c.TopicPrefix, c.Retain), nil
	})
}
