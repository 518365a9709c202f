package discovery

import (
	"fmt"
	"net"

	"github.com/hashicorp/consul/api"
	"go.uber.org/zap"
)

// Registration is a live Consul registration of this process.
type Registration struct {
	client    *api.Client
	serviceID string
	log       *zap.Logger
}

// RegisterService registers the HTTP API in Consul with an HTTP health check
// against healthPath.
func RegisterService(serviceName string, servicePort int, consulAddr, healthPath string, log *zap.Logger) (*Registration, error) {
	config := api.DefaultConfig()
	config.Address = consulAddr
	client, err := api.NewClient(config)
	if err != nil {
		return nil, err
	}

	localIP, err := getOutboundIP()
	if err != nil {
		return nil, err
	}

	// service-ip-port keeps IDs unique across replicas
	serviceID := fmt.Sprintf("%s-%s-%d", serviceName, localIP, servicePort)

	registration := &api.AgentServiceRegistration{
		ID:      serviceID,
		Name:    serviceName,
		Port:    servicePort,
		Address: localIP,
		Tags:    []string{"order-feedback", "http"},
		Check: &api.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d%s", localIP, servicePort, healthPath),
			Interval:                       "10s",
			Timeout:                        "5s",
			DeregisterCriticalServiceAfter: "30s",
		},
	}

	if err := client.Agent().ServiceRegister(registration); err != nil {
		return nil, err
	}

	log.Info("Service registered in Consul",
		zap.String("service", serviceName),
		zap.String("id", serviceID),
		zap.String("addr", fmt.Sprintf("%s:%d", localIP, servicePort)),
	)
	return &Registration{client: client, serviceID: serviceID, log: log}, nil
}

func (r *Registration) Deregister() {
	if err := r.client.Agent().ServiceDeregister(r.serviceID); err != nil {
		r.log.Warn("consul deregister failed", zap.String("id", r.serviceID), zap.Error(err))
	}
}

// getOutboundIP returns the LAN address; registering 127.0.0.1 would make the
// health check unreachable from the Consul agent.
func getOutboundIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", err
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP.String(), nil
}
