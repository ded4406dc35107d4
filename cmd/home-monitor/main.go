package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"home-monitor/internal/actuators"
	"home-monitor/internal/buttons"
	"home-monitor/internal/config"
	"home-monitor/internal/dispatch"
	"home-monitor/internal/events"
	"home-monitor/internal/fsm"
	"home-monitor/internal/history"
	"home-monitor/internal/journal"
	"home-monitor/internal/mqtt"
	"home-monitor/internal/redis"
	"home-monitor/internal/scheduler"
	"home-monitor/internal/taskqueue"
	"home-monitor/internal/trains"
	"home-monitor/internal/voice"
	"home-monitor/internal/watermeter"
	"home-monitor/internal/web"
	"home-monitor/internal/web/api"
	"home-monitor/internal/zigbee"

	"github.com/pion/mdns/v2"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mqttClient, err := mqtt.NewClient(cfg.MQTT.Broker, cfg.MQTT.ClientID)
	if err != nil {
		log.Fatalf("Failed to connect to MQTT: %v", err)
	}

	redisClient := redis.NewClient(cfg.Redis.Addr)

	// Event sinks: the Redis journal always, Postgres only when configured.
	recorders := []dispatch.Recorder{
		journal.New(redisClient, cfg.Redis.Stream, cfg.Redis.StreamMaxLen),
	}
	if cfg.Database.URL != "" {
		hist, err := history.Open(ctx, cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to open event history: %v", err)
		}
		defer hist.Close()
		recorders = append(recorders, hist)
	}

	go taskqueue.StartWorkers(cfg.Redis.Addr, voice.LogPlayer{})

	queue := events.NewQueue(cfg.Queue.Size)

	freezer := fsm.NewFreezer("freezer-alarm", cfg.FreezerSched, time.Now)
	security := fsm.NewSecurity("security-alarm", cfg.SecuritySched, time.Now)

	trainsClient := trains.NewClient(cfg.Trains.GatewayURL, cfg.Trains.Token, cfg.Trains.Timeout)
	delay := fsm.NewDelayIndicator("delay-indicator",
		cfg.Trains.FromStation, cfg.Trains.ToStation,
		trainsClient, cfg.TrainSched, time.Now)

	freezerEngine := fsm.NewEngine(freezer, queue, cfg.Freezer.Interval)
	securityEngine := fsm.NewEngine(security, queue, cfg.Security.Interval)
	delayEngine := fsm.NewEngine(delay, queue, cfg.Trains.Interval)
	go freezerEngine.Run(ctx)
	go securityEngine.Run(ctx)
	go delayEngine.Run(ctx)

	zig := actuators.NewZigbee(mqttClient, cfg.MQTT.BaseTopic,
		cfg.Devices.IndicatorBulb, cfg.Devices.Siren, cfg.Devices.LightGroup)

	dispatcher := dispatch.New(queue, cfg.Dispatch, zig,
		taskqueue.EnqueueAnnouncement, recorders...)
	go dispatcher.Run(ctx)

	water := watermeter.NewClient(cfg.Water.Addr, cfg.Water.Timeout)

	delayText := func(ctx context.Context) string {
		delays := trainsClient.Delays(ctx, cfg.Trains.FromStation, cfg.Trains.ToStation)
		return voice.DelayAnnouncement(delays, cfg.Trains.FromStation, cfg.Trains.ToStation)
	}
	waterText := func(ctx context.Context) string {
		return voice.WaterAnnouncement(water.Level(ctx))
	}

	// The ingestor holds the last freezer reading the long press reads
	// out, so the status text closes over it.
	var ingestor *zigbee.Ingestor
	statusText := func(ctx context.Context) string {
		return waterText(ctx) + " " + voice.TemperatureAnnouncement(ingestor.LastTemperature())
	}

	actions := &buttons.Actions{
		Group:      zig,
		Announce:   taskqueue.EnqueueAnnouncement,
		DelayText:  delayText,
		StatusText: statusText,
		Freezer:    freezer,
		Security:   security,
	}

	ingestor = zigbee.New(mqttClient, cfg.MQTT.BaseTopic, queue,
		freezer, security, actions,
		cfg.Freezer.Sensor, cfg.Security.ContactSensor, cfg.Devices.Button,
		cfg.Freezer.TempThreshold, cfg.Freezer.OfflineAfter)
	if err := ingestor.Start(ctx); err != nil {
		log.Fatalf("Failed to start zigbee ingestion: %v", err)
	}

	if cfg.Buttons.Enabled {
		monitor, err := buttons.NewMonitor(cfg.Buttons.Chip, cfg.Buttons.Line, actions)
		if err != nil {
			log.Printf("GPIO button unavailable: %v", err)
		} else {
			defer monitor.Close()
			go monitor.Run(ctx)
		}
	}

	sched := scheduler.New(cfg.Location, taskqueue.EnqueueAnnouncement, scheduler.Texts{
		TrainDelays: delayText,
		HotWater:    waterText,
	})
	if err := sched.LoadAnnouncements(cfg.Announcements); err != nil {
		log.Fatalf("Failed to load announcements: %v", err)
	}
	sched.Start()

	webServer := web.NewWebServer(api.Dependencies{
		Machines: []api.MachineStatus{
			{Name: "freezer-alarm", Engine: freezerEngine},
			{Name: "security-alarm", Engine: securityEngine},
			{Name: "delay-indicator", Engine: delayEngine},
		},
		Queue:       queue,
		Freezer:     freezer,
		Security:    security,
		Temperature: ingestor.LastTemperature,
	})
	go func() {
		if err := webServer.Start(cfg.Web.Addr); err != nil {
			log.Fatalf("Web server failed: %v", err)
		}
	}()

	go func() {
		if err := startMDNSServer(cfg.Web.MDNSName); err != nil {
			log.Printf("mDNS server unavailable: %v", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	cancel()
	sched.Stop()
	taskqueue.StopWorkers()
	mqttClient.Disconnect(250)
	log.Println("Shutdown complete")
}

// startMDNSServer answers localName on the LAN so the status API is
// reachable without knowing the controller's address.
func startMDNSServer(localName string) error {
	if localName == "" {
		return nil
	}

	addr4, err := net.ResolveUDPAddr("udp4", mdns.DefaultAddressIPv4)
	if err != nil {
		return fmt.Errorf("resolving mDNS udp4 address: %w", err)
	}
	addr6, err := net.ResolveUDPAddr("udp6", mdns.DefaultAddressIPv6)
	if err != nil {
		return fmt.Errorf("resolving mDNS udp6 address: %w", err)
	}

	l4, err := net.ListenUDP("udp4", addr4)
	if err != nil {
		return fmt.Errorf("listening for mDNS on udp4: %w", err)
	}
	l6, err := net.ListenUDP("udp6", addr6)
	if err != nil {
		l4.Close()
		return fmt.Errorf("listening for mDNS on udp6: %w", err)
	}

	if _, err := mdns.Server(ipv4.NewPacketConn(l4), ipv6.NewPacketConn(l6), &mdns.Config{
		LocalNames: []string{localName},
	}); err != nil {
		return fmt.Errorf("starting mDNS server for %s: %w", localName, err)
	}
	return nil
}
