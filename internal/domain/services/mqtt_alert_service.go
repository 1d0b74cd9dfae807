package services

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"guardian-http-service/internal/domain/models"
	"guardian-http-service/internal/infrastructure/config"
)

// 主题常量
const (
	// 紧急警报主题
	TopicPanicAlert = "guardian/panic/alert"

	// 警报清除主题
	TopicPanicClear = "guardian/panic/clear"

	// 在岗状态快照主题
	TopicPresenceStatus = "guardian/presence/status"

	// 系统消息主题
	TopicSystemMessage = "guardian/system"
)

// 消息结构体定义
type (
	// PanicAlertMessage 紧急警报消息。Version 单调递增，
	// 订阅方收到后只接受版本更高的状态
	PanicAlertMessage struct {
		Type      string              `json:"type"` // alert/clear
		Version   int64               `json:"version"`
		Alerts    []models.PanicAlert `json:"alerts"`
		Timestamp int64               `json:"timestamp"`
	}

	// PresenceMessage 在岗状态快照消息
	PresenceMessage struct {
		Version     int64                   `json:"version"`
		GeneratedAt int64                   `json:"generated_at"`
		Guards      []models.PresenceStatus `json:"guards"`
	}

	// SystemMessage 系统消息
	SystemMessage struct {
		Type      string      `json:"type"`
		Level     string      `json:"level"` // info/warning/error
		Message   string      `json:"message"`
		Data      interface{} `json:"data,omitempty"`
		Timestamp int64       `json:"timestamp"`
	}
)

// InterfaceMQTTAlertService 定义MQTT警报广播服务接口
type InterfaceMQTTAlertService interface {
	Connect() error
	Disconnect()
	PublishPanicAlert(version int64, alerts []models.PanicAlert) error
	PublishPanicClear(version int64) error
	PublishPresenceSnapshot(snapshot *models.PresenceSnapshot) error
	PublishSystemMessage(messageType string, message map[string]interface{}) error
}

// MQTTAlertService 通过MQTT向所有订阅方广播警报和在岗状态。
// 发布统一使用QoS 1（至少一次送达），消息可能重复，
// 订阅方必须按版本号幂等处理；错过推送的订阅方通过全量拉取追平.
type MQTTAlertService struct {
	Config         *config.Config
	Client         mqtt.Client
	IsConnected    bool
	connectedMutex sync.RWMutex // 保护IsConnected字段的读写
	PublishMutex   sync.Mutex   // 用于保护MQTT消息发布
}

// NewMQTTAlertService 创建一个新的MQTT警报广播服务
func NewMQTTAlertService(cfg *config.Config) InterfaceMQTTAlertService {
	service := &MQTTAlertService{
		Config:      cfg,
		IsConnected: false,
	}

	// 设置MQTT客户端
	service.setupMQTTClient()

	return service
}

// setupMQTTClient 设置MQTT客户端
func (s *MQTTAlertService) setupMQTTClient() {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(s.Config.MQTTBrokerURL)
	// 使用唯一的客户端ID，避免同一服务多实例冲突
	opts.SetClientID(fmt.Sprintf("%s-%s-%d", s.Config.MQTTClientID, uuid.New().String()[:8], time.Now().UnixNano()))
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(time.Second * 30)
	opts.SetKeepAlive(time.Second * 60)
	opts.SetPingTimeout(time.Second * 10)
	opts.SetCleanSession(true)
	opts.SetOrderMatters(true)

	opts.SetDefaultPublishHandler(func(client mqtt.Client, msg mqtt.Message) {
		log.Printf("[MQTT] 收到未处理的消息: topic=%s", msg.Topic())
	})

	// 添加用户名和密码
	if s.Config.MQTTUsername != "" {
		opts.SetUsername(s.Config.MQTTUsername)
		opts.SetPassword(s.Config.MQTTPassword)
	}

	// 添加TLS配置，支持SSL连接
	if strings.HasPrefix(s.Config.MQTTBrokerURL, "ssl://") || strings.HasPrefix(s.Config.MQTTBrokerURL, "tls://") || s.Config.MQTTSSLEnabled {
		log.Println("[MQTT] 使用TLS连接")
		tlsConfig := &tls.Config{
			InsecureSkipVerify: true, // 默认跳过验证，如有CA证书则使用
		}
		opts.SetTLSConfig(tlsConfig)
	}

	// 连接断开时记录日志，自动重连由客户端处理，
	// 重连后订阅方通过全量拉取恢复当前警报状态
	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		s.connectedMutex.Lock()
		s.IsConnected = false
		s.connectedMutex.Unlock()
		log.Printf("[MQTT] 连接断开: %v", err)
	})

	opts.SetOnConnectHandler(func(client mqtt.Client) {
		s.connectedMutex.Lock()
		s.IsConnected = true
		s.connectedMutex.Unlock()
		log.Printf("[MQTT] 连接就绪")
	})

	s.Client = mqtt.NewClient(opts)
}

// Connect 连接到MQTT服务器，带有重试机制
func (s *MQTTAlertService) Connect() error {
	// 加锁，确保同一时间只有一个连接尝试
	s.PublishMutex.Lock()
	defer s.PublishMutex.Unlock()

	return s.connectLocked()
}

// connectLocked 执行连接重试，调用方必须持有PublishMutex
func (s *MQTTAlertService) connectLocked() error {
	log.Printf("[MQTT] 正在连接到 %s...", s.Config.MQTTBrokerURL)

	// 如果已连接，直接返回
	s.connectedMutex.RLock()
	isConnected := s.IsConnected && s.Client.IsConnected()
	s.connectedMutex.RUnlock()

	if isConnected {
		return nil
	}

	// 添加最大重试次数和指数退避策略
	maxRetries := 5
	var err error

	for i := 0; i < maxRetries; i++ {
		token := s.Client.Connect()
		if token.WaitTimeout(5*time.Second) && token.Error() == nil {
			s.connectedMutex.Lock()
			s.IsConnected = true
			s.connectedMutex.Unlock()
			log.Printf("[MQTT] 成功连接到 %s", s.Config.MQTTBrokerURL)
			return nil
		}

		err = token.Error()
		backoffTime := time.Duration(1<<uint(i)) * time.Second // 指数退避: 1s, 2s, 4s, 8s, 16s
		log.Printf("[MQTT] 连接尝试 %d/%d 失败: %v, 将在 %v 后重试", i+1, maxRetries, err, backoffTime)
		time.Sleep(backoffTime)
	}

	return fmt.Errorf("[MQTT] 连接失败，已尝试 %d 次: %v", maxRetries, err)
}

// Disconnect 断开与MQTT服务器的连接
func (s *MQTTAlertService) Disconnect() {
	if s.Client != nil && s.Client.IsConnected() {
		s.Client.Disconnect(250)
	}
}

// PublishPanicAlert 广播新触发的紧急警报和当前全部未清除警报
func (s *MQTTAlertService) PublishPanicAlert(version int64, alerts []models.PanicAlert) error {
	msg := PanicAlertMessage{
		Type:      "alert",
		Version:   version,
		Alerts:    alerts,
		Timestamp: time.Now().UnixMilli(),
	}
	return s.publishMessage(TopicPanicAlert, msg)
}

// PublishPanicClear 广播警报清除。清除是全量操作，
// 订阅方收到后应显示为无警报状态
func (s *MQTTAlertService) PublishPanicClear(version int64) error {
	msg := PanicAlertMessage{
		Type:      "clear",
		Version:   version,
		Alerts:    []models.PanicAlert{},
		Timestamp: time.Now().UnixMilli(),
	}
	return s.publishMessage(TopicPanicClear, msg)
}

// PublishPresenceSnapshot 广播在岗状态快照
func (s *MQTTAlertService) PublishPresenceSnapshot(snapshot *models.PresenceSnapshot) error {
	msg := PresenceMessage{
		Version:     snapshot.Version,
		GeneratedAt: snapshot.GeneratedAt.UnixMilli(),
		Guards:      snapshot.Guards,
	}
	return s.publishMessage(TopicPresenceStatus, msg)
}

// PublishSystemMessage 发布系统消息
func (s *MQTTAlertService) PublishSystemMessage(messageType string, message map[string]interface{}) error {
	// 创建标准格式的系统消息
	systemMsg := SystemMessage{
		Type:      messageType,
		Timestamp: time.Now().UnixMilli(),
	}
	if level, ok := message["level"].(string); ok {
		systemMsg.Level = level
	}
	if text, ok := message["message"].(string); ok {
		systemMsg.Message = text
	}
	systemMsg.Data = message["data"]

	return s.publishMessage(TopicSystemMessage, systemMsg)
}

// publishMessage 序列化并发布消息
func (s *MQTTAlertService) publishMessage(topic string, payload interface{}) error {
	// 加锁保护发布过程，避免并发发布冲突
	s.PublishMutex.Lock()
	defer s.PublishMutex.Unlock()

	// 检查连接状态
	s.connectedMutex.RLock()
	isConnected := s.IsConnected && s.Client.IsConnected()
	s.connectedMutex.RUnlock()

	if !isConnected {
		log.Printf("[MQTT] 客户端未连接，尝试重新连接...")
		if err := s.connectLocked(); err != nil {
			return fmt.Errorf("MQTT客户端未连接: %v", err)
		}
	}

	// 序列化消息
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("序列化消息失败: %v", err)
	}

	// 发布消息，使用QoS 1确保消息至少被传递一次
	qos := byte(1)
	retained := s.Config.MQTTRetained

	// 创建发布令牌并等待完成
	token := s.Client.Publish(topic, qos, retained, jsonData)

	// 设置超时时间，避免无限等待
	if !token.WaitTimeout(3 * time.Second) {
		return fmt.Errorf("发布消息超时")
	}

	if token.Error() != nil {
		return fmt.Errorf("发布消息失败: %v", token.Error())
	}

	log.Printf("[MQTT] 已发布消息到主题: %s", topic)
	return nil
}
