// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import (
	"crypto/tls"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/galleryd/counter"
	"github.com/bitmark-inc/galleryd/fault"
)

const (
	logName      = "client_rpc"
	minBandwidth = 1000000 // 1Mbps
)

// RPCConfiguration - configuration file data for RPC setup
type RPCConfiguration struct {
	MaximumConnections uint64   `hcl:"maximum_connections" json:"maximum_connections"`
	Bandwidth          float64  `hcl:"bandwidth" json:"bandwidth"`
	Listen             []string `hcl:"listen" json:"listen"`
	Certificate        string   `hcl:"certificate" json:"certificate"`
	PrivateKey         string   `hcl:"private_key" json:"private_key"`
}

// Server - a TLS JSON RPC listener with its registered services
type Server struct {
	log             *logger.L
	listeners       []net.Listener
	count           counter.Counter
	server          *rpc.Server
	maxConnections  uint64
	tlsConfig       *tls.Config
	ipType          []string
	listenIPAndPort []string
}

// NewServer - register all services and prepare a listener
func NewServer(configuration *RPCConfiguration) (*Server, error) {
	log := logger.New(logName)

	if configuration.MaximumConnections < 1 {
		log.Errorf("invalid %s maximum connection limit: %d", logName, configuration.MaximumConnections)
		return nil, fault.MissingParameters
	}
	if configuration.Bandwidth <= minBandwidth {
		log.Errorf("invalid %s bandwidth: %f bps < 1Mbps", logName, configuration.Bandwidth)
		return nil, fault.MissingParameters
	}
	if 0 == len(configuration.Listen) {
		log.Errorf("missing %s listen", logName)
		return nil, fault.MissingParameters
	}

	tlsConfig, fingerprint, err := getCertificate(log, logName, configuration.Certificate, configuration.PrivateKey)
	if nil != err {
		return nil, err
	}
	log.Infof("%s: SHA3-256 fingerprint: %x", logName, fingerprint)

	s := &Server{
		log:             log,
		maxConnections:  configuration.MaximumConnections,
		listenIPAndPort: configuration.Listen,
		server:          createRPCServer(log),
		tlsConfig:       tlsConfig,
	}

	s.ipType, err = parseListenAddress(configuration.Listen, log)
	if nil != err {
		return nil, err
	}

	return s, nil
}

// Serve - start accepting connections on all configured addresses
func (s *Server) Serve() error {
	for i, listen := range s.listenIPAndPort {
		s.log.Infof("starting RPC server: %s", listen)
		listener, err := tls.Listen(s.ipType[i], listen, s.tlsConfig)
		if nil != err {
			s.log.Errorf("rpc server listen error: %s", err)
			return err
		}
		s.listeners = append(s.listeners, listener)

		go doServeRPC(listener, s.server, s.maxConnections, s.log, &s.count)
	}
	return nil
}

// Stop - close all listeners
func (s *Server) Stop() {
	for _, listener := range s.listeners {
		_ = listener.Close()
	}
	s.listeners = nil
}

func doServeRPC(listen net.Listener, server *rpc.Server, maximumConnections uint64, log *logger.L, count *counter.Counter) {
	for {
		conn, err := listen.Accept()
		if nil != err {
			log.Errorf("rpc.server terminated: accept error: %s", err)
			break
		}
		if count.Increment() <= maximumConnections {
			go func() {
				server.ServeCodec(jsonrpc.NewServerCodec(conn))
				_ = conn.Close()
				count.Decrement()
			}()
		} else {
			count.Decrement()
			_ = conn.Close()
		}
	}
	_ = listen.Close()
	log.Error("RPC accept terminated")
}

// create a server instance with all the services attached
func createRPCServer(log *logger.L) *rpc.Server {
	server := rpc.NewServer()

	if err := server.Register(NewAsset(log)); nil != err {
		logger.Panicf("rpc.Register Asset failed: %s", err)
	}
	if err := server.Register(NewMarket(log)); nil != err {
		logger.Panicf("rpc.Register Market failed: %s", err)
	}
	if err := server.Register(NewOwner(log)); nil != err {
		logger.Panicf("rpc.Register Owner failed: %s", err)
	}
	if err := server.Register(NewAccess(log)); nil != err {
		logger.Panicf("rpc.Register Access failed: %s", err)
	}

	return server
}

// load the keypair and compute its advertised fingerprint
func getCertificate(log *logger.L, name, certificate, key string) (*tls.Config, [32]byte, error) {
	var fin [32]byte

	keyPair, err := tls.X509KeyPair([]byte(certificate), []byte(key))
	if nil != err {
		log.Errorf("%s failed to load keypair: %v", name, err)
		return nil, fin, err
	}

	tlsConfiguration := &tls.Config{
		Certificates: []tls.Certificate{
			keyPair,
		},
	}

	fin = sha3.Sum256(keyPair.Certificate[0])

	return tlsConfiguration, fin, nil
}

func parseListenAddress(addrs []string, log *logger.L) ([]string, error) {
	parsed := make([]string, len(addrs))
	for i, listen := range addrs {
		if '*' == listen[0] {
			// change "*:PORT" to "[::]:PORT"
			// on the assumption that this will listen on tcp4 and tcp6
			addrs[i] = "[::]" + ":" + strings.Split(listen, ":")[1]
			listen = "::"
			parsed[i] = "tcp"
		} else if '[' == listen[0] {
			listen = strings.Split(listen[1:], "]:")[0]
			parsed[i] = "tcp6"
		} else {
			listen = strings.Split(listen, ":")[0]
			parsed[i] = "tcp4"
		}

		if ip := net.ParseIP(listen); nil == ip {
			err := fault.InvalidIpAddress
			log.Errorf("rpc server listen error: %s", err)
			return nil, err
		}
	}

	return parsed, nil
}
