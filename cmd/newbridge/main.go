package main

import (
	"context"
	"flag"
	"net/http"
	"os"

	"github.com/golang/glog"

	"github.com/robotalks/newbridge/pkg/bridge"
	"github.com/robotalks/newbridge/pkg/bridge/prom"
	"github.com/robotalks/newbridge/pkg/env"
	"github.com/robotalks/newbridge/pkg/framework"
	"github.com/robotalks/newbridge/pkg/report/mqtt"
)

//go-build: CGO_ENABLED=0

var (
	mqttURL     = os.Getenv("NEWBRIDGE_MQTT_URL")
	metricsAddr string
	deviceID    string
	relay       = true
)

func init() {
	bridge.SetupFlags()
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL for status reports, empty to disable")
	flag.StringVar(&metricsAddr, "metrics-addr", metricsAddr, "Listen address for Prometheus metrics, empty to disable")
	flag.StringVar(&deviceID, "id", deviceID, "Device ID used in report topics, default is machine ID")
	flag.BoolVar(&relay, "relay", relay, "Relay stdin/stdout to the peer after the handshake")
}

func metricsServer(addr string, reg http.Handler) framework.Runnable {
	return framework.NamedRun("metrics", framework.RunFunc(func(ctx context.Context) error {
		srv := &http.Server{Addr: addr, Handler: reg}
		glog.Infof("metrics listening on %s", addr)
		err := framework.RunWithContextCloser(ctx, srv, srv.ListenAndServe)
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}))
}

func main() {
	flag.Parse()
	defer glog.Flush()

	if deviceID == "" {
		deviceID = env.MachineID()
	}

	conf := bridge.NewConfig()
	b := conf.NewBridge(conf.NewDevice())
	defer b.End()

	runner := framework.NewRunner().HandleSignals()
	var observers bridge.Observers

	if metricsAddr != "" {
		reg := prom.NewRegistry()
		observers = append(observers, prom.NewObserver(reg))
		runner.Go(metricsServer(metricsAddr, prom.Handler(reg)))
	}

	if mqttURL != "" {
		pub, err := mqtt.NewPublisher(mqttURL, deviceID)
		if err != nil {
			glog.Exitf("mqtt: %v", err)
		}
		if err := pub.Connect(runner.Context); err != nil {
			glog.Exitf("mqtt connect %s: %v", mqttURL, err)
		}
		observers = append(observers, pub)
		runner.Go(pub)
	}

	if len(observers) > 0 {
		b.Handshake.Observer = observers
	}

	res, err := b.Begin(runner.Context)
	if err != nil {
		runner.Stop()
		runner.Wait()
		glog.Exitf("handshake on %s: %v", conf.Device, err)
	}
	glog.Infof("handshake on %s: %s", conf.Device, res)

	if relay {
		r := bridge.NewRelay(b, os.Stdin, os.Stdout)
		runner.Go(framework.NamedRun(r.Name(), framework.RunFunc(func(ctx context.Context) error {
			defer runner.Stop()
			return r.Run(ctx)
		})))
	}
	if err := runner.Wait(); err != nil {
		glog.Errorf("%v", err)
	}
}
