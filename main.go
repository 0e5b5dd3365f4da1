package main

import (
	"flag"
	"fmt"
	"os"

	"dengar/audio"
	"dengar/bridge"
	"dengar/chat"
	"dengar/config"
	"dengar/log"
	"dengar/transcriber"
)

var version = "dev"

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the JSON settings file")
	langFlag := flag.String("lang", "", "recognition language (BCP 47, e.g. id-ID)")
	modelFlag := flag.String("model", "", "chat model name")
	deviceFlag := flag.String("device", "", "capture device name")
	setupFlag := flag.Bool("setup", false, "pick the capture device interactively")
	debugFlag := flag.Bool("debug", false, "save unrecognized audio for inspection")
	logPath := flag.String("logpath", "", "log directory")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("dengar", version)
		return
	}

	logDir, err := log.ResolveDir(*logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "resolving log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logDir)
	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "opening logs: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	events := bridge.New()

	cfg, cfgErr := config.Load(*configPath)
	if cfgErr != nil {
		log.Warnf("config: %v", cfgErr)
		events.Publish(bridge.Log{Channel: bridge.ChannelInfo, Text: "Using default settings (" + cfgErr.Error() + ")"})
	}
	if *langFlag != "" {
		cfg.DefaultLanguage = *langFlag
	}
	if *modelFlag != "" {
		cfg.Model = *modelFlag
	}

	audioCtx, err := audio.NewContext()
	if err != nil {
		log.Errorf("audio subsystem: %v", err)
		events.Publish(bridge.Log{Channel: bridge.ChannelInfo, Text: "Audio unavailable: " + err.Error(), IsError: true})
	} else {
		defer audioCtx.Close()
	}

	deviceName := *deviceFlag
	if *setupFlag && audioCtx != nil {
		dev, err := audio.SelectDevice(audioCtx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "device selection: %v\n", err)
			os.Exit(1)
		}
		deviceName = dev.Name
	}

	mics := audio.NewManager(audioCtx, 0)
	if audioCtx != nil {
		if err := mics.Refresh(); err != nil {
			log.Errorf("device enumeration: %v", err)
			events.Publish(bridge.Log{Channel: bridge.ChannelInfo, Text: err.Error(), IsError: true})
		} else if err := mics.Use(deviceName); err != nil {
			log.Errorf("microphone init: %v", err)
			events.Publish(bridge.Log{Channel: bridge.ChannelInfo, Text: "Microphone unavailable: " + err.Error(), IsError: true})
		}
	}

	trans, err := transcriber.New()
	if err != nil {
		log.Warnf("transcriber: %v", err)
		events.Publish(bridge.Log{Channel: bridge.ChannelInfo, Text: "Transcription disabled: " + err.Error(), IsError: true})
	}

	chatMgr := chat.NewManager(
		chat.NewOpenAI(""),
		cfg.Model,
		chat.Options{Temperature: cfg.Temperature, MaxTokens: cfg.MaxTokens},
	)
	chatMgr.Seed(cfg.SystemPrompt)

	ctrl := newController(mics, trans, chatMgr, events, cfg.DefaultLanguage)
	if *debugFlag {
		ctrl.ToggleDebug()
	}

	micName := "none"
	if sess := mics.Session(); sess != nil {
		micName = sess.DeviceName()
		log.Infof("microphone ready: %s @ %d Hz", micName, sess.EffectiveRate())
	}

	if _, err := newTUIProgram(ctrl, events, micName).Run(); err != nil {
		log.Errorf("ui: %v", err)
		fmt.Fprintf(os.Stderr, "ui error: %v\n", err)
		os.Exit(1)
	}
}
