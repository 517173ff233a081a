package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"log"
	"net"
	"net/http"

	fx "github.com/robotalks/rcvehicle/pkg/framework"
	"github.com/robotalks/rcvehicle/pkg/radio/netradio"
	"github.com/robotalks/rcvehicle/pkg/sim"
	"github.com/robotalks/rcvehicle/pkg/uplink"
	"github.com/robotalks/rcvehicle/pkg/vehicle"
)

var (
	configFile   string
	batteryVolts = 4.1
	supplyVolts  = 5.0
)

func init() {
	flag.StringVar(&configFile, "config", configFile, "YAML config file.")
	flag.Float64Var(&batteryVolts, "sim-battery", batteryVolts, "Simulated battery voltage at start.")
	flag.Float64Var(&supplyVolts, "sim-supply", supplyVolts, "Simulated supply voltage.")
	vehicle.SetupFlags()
	sim.SetupFlags()
}

func main() {
	flag.Parse()

	conf := vehicle.MustLoad(configFile)
	trx := netradio.NewTransceiver()
	servo, motor, light := &sim.Servo{}, &sim.Motor{}, &sim.Light{}
	battery := sim.NewBattery(batteryVolts, supplyVolts)
	v := conf.MustNew(vehicle.Hardware{
		Radio:   trx,
		Servo:   servo,
		Motor:   motor,
		Light:   light,
		Sensors: battery,
	}, nil)
	body := sim.NewBody(sim.DefaultBody(), servo, motor, battery)
	loop := v.NewLoop(nil).Add(body)

	if conf.MQTTURL != "" {
		u, err := uplink.New(conf.MQTTURL, v)
		if err != nil {
			log.Fatalln(err)
		}
		v.AddObserver(u)
		loop.Add(u)
	}

	runner := fx.NewRunner().HandleSignals()
	if conf.Listen != "" {
		ln, err := net.Listen("tcp", conf.Listen)
		if err != nil {
			log.Fatalln(err)
		}
		log.Printf("network radio on %s", ln.Addr())
		runner.Go(fx.NamedRun("tcp", fx.RunFunc(func(ctx context.Context) error {
			return trx.ServeListener(ctx, ln)
		})))
	}
	if conf.WebSocketListen != "" {
		mux := http.NewServeMux()
		mux.Handle(netradio.WebSocketPath, trx.WebSocketHandler(runner.Context))
		server := &http.Server{Addr: conf.WebSocketListen, Handler: mux}
		log.Printf("websocket radio on %s%s", conf.WebSocketListen, netradio.WebSocketPath)
		runner.Go(fx.NamedRun("websocket", fx.RunFunc(func(ctx context.Context) error {
			go func() {
				<-ctx.Done()
				server.Close()
			}()
			if err := server.ListenAndServe(); err != http.ErrServerClosed {
				return err
			}
			return ctx.Err()
		})))
	}
	runner.Go(fx.NamedRun("loop", loop))

	if err := runner.Wait(); err != nil {
		log.Fatalln(err)
	}
}
