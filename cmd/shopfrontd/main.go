package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"ykjam/shopfront/pkg"
	"ykjam/shopfront/pkg/session"
	"ykjam/shopfront/pkg/web"
)

type config struct {
	ListenAddress string `json:"listen_address"`
	APIBaseUrl    string `json:"api_base_url"`
	TokenFile     string `json:"token_file,omitempty"`
}

func ReadConfig(source string) (c *config, err error) {
	var raw []byte
	raw, err = ioutil.ReadFile(source)
	if err != nil {
		eMsg := "error reading config from file"
		log.WithError(err).Error(eMsg)
		err = errors.Wrap(err, eMsg)
		return
	}
	err = json.Unmarshal(raw, &c)
	if err != nil {
		eMsg := "error parsing config from json"
		log.WithError(err).Error(eMsg)
		err = errors.Wrap(err, eMsg)
		c = nil
	}
	return
}

func run() error {
	log.Info("Starting Shopfront payment-return daemon")
	signalChan := make(chan os.Signal, 1)
	quitChan := make(chan interface{})
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

	var configFile string
	var conf *config
	var err error
	err = godotenv.Load()
	if err != nil {
		log.WithError(err).Error("error loading .env, ignoring")
	}
	configFile = os.Getenv("SHOPFRONT_CONFIG_FILE")
	if configFile == "" {
		configFile = "config.json"
	}

	conf, err = ReadConfig(configFile)
	if err != nil {
		log.WithError(err).WithField("config-file", configFile).Error("error loading configuration")
		return err
	}
	tokenFile := conf.TokenFile
	if tokenFile == "" {
		tokenFile = session.DefaultPath()
	}
	store := session.NewFileStore(tokenFile)
	client := pkg.NewClient(conf.APIBaseUrl, 60*time.Second, store)
	service := pkg.NewService(client)
	log.Info("service initialized")

	hc := web.NewHandlerContext(service)

	r := mux.NewRouter()
	r.HandleFunc("/api/epoch", hc.HandleUtilityEpoch).Methods(http.MethodGet)
	r.HandleFunc("/api/ip", hc.HandleUtilityIP).Methods(http.MethodGet)
	r.HandleFunc("/payment/success", hc.HandlePaymentSuccess).Methods(http.MethodGet)
	r.HandleFunc("/payment/failed", hc.HandlePaymentFailed).Methods(http.MethodGet)
	r.HandleFunc("/payment/cancelled", hc.HandlePaymentCancelled).Methods(http.MethodGet)
	r.HandleFunc("/payment/test-gateway", hc.HandleTestGateway).Methods(http.MethodGet)

	server := http.Server{
		Addr:              conf.ListenAddress,
		Handler:           r,
		ReadTimeout:       60 * time.Second,
		ReadHeaderTimeout: 30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	var listener net.Listener
	listener, err = net.Listen("tcp", conf.ListenAddress)
	if err != nil {
		log.WithError(err).Error("error setting up listener")
		return err
	}
	log.WithField("listen", conf.ListenAddress).Info("Starting payment-return HTTP server")
	go startServer(&server, listener)
	for {
		select {
		case <-quitChan:
			log.Warn("quit channel closed, closing listener")
			err = server.Shutdown(context.Background())
			if err != nil {
				log.WithError(err).Error("error during HTTP server shutdown")
				return err
			}
			return nil
		case sig := <-signalChan:
			switch sig {
			case os.Interrupt, os.Kill, syscall.SIGTERM:
				log.Info("interrupt signal received, sending Quit signal")
				close(quitChan)
			}
		}
	}
}

func startServer(srv *http.Server, listener net.Listener) {
	err := srv.Serve(listener)
	if err != nil {
		log.WithError(err).Error("payment-return HTTP server error")
	}
	log.Warn("closing payment-return HTTP server")
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
