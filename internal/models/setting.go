package models

import (
	"time"
)

// 内置系统设置键
const (
	SettingSiteName            = "site_name"
	SettingSiteDescription     = "site_description"
	SettingCurrency            = "currency"
	SettingTaxRate             = "tax_rate"
	SettingFreeShippingMinimum = "free_shipping_minimum"
	SettingMaxCartItems        = "max_cart_items"
	SettingOrderNumberPrefix   = "order_number_prefix"
	SettingEmailNotifications  = "email_notifications"
	SettingSMSNotifications    = "sms_notifications"
	SettingMaintenanceMode     = "maintenance_mode"
)

// SystemSetting 系统设置表（键值对）
type SystemSetting struct {
	ID           uint      `gorm:"primarykey" json:"id"`                                      // 主键
	SettingKey   string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"setting_key"` // 配置键
	SettingValue string    `gorm:"type:text" json:"setting_value"`                            // 配置值
	Description  string    `gorm:"type:text" json:"description"`                              // 说明
	IsActive     bool      `gorm:"not null;default:true;index" json:"is_active"`              // 是否生效
	CreatedAt    time.Time `json:"created_at"`                                                // 创建时间
	UpdatedAt    time.Time `json:"updated_at"`                                                // 更新时间
}

// TableName 指定表名
func (SystemSetting) TableName() string {
	return "system_settings"
}

// DefaultSystemSettings 内置默认配置
func DefaultSystemSettings() []SystemSetting {
	return []SystemSetting{
		{SettingKey: SettingSiteName, SettingValue: "BOSS SHOPP", Description: "Nome do site", IsActive: true},
		{SettingKey: SettingSiteDescription, SettingValue: "Sua loja online de confiança", Description: "Descrição do site", IsActive: true},
		{SettingKey: SettingCurrency, SettingValue: "BRL", Description: "Moeda padrão", IsActive: true},
		{SettingKey: SettingTaxRate, SettingValue: "0.00", Description: "Taxa de imposto padrão", IsActive: true},
		{SettingKey: SettingFreeShippingMinimum, SettingValue: "200.00", Description: "Valor mínimo para frete grátis", IsActive: true},
		{SettingKey: SettingMaxCartItems, SettingValue: "50", Description: "Máximo de itens no carrinho", IsActive: true},
		{SettingKey: SettingOrderNumberPrefix, SettingValue: "BS", Description: "Prefixo do número do pedido", IsActive: true},
		{SettingKey: SettingEmailNotifications, SettingValue: "true", Description: "Ativar notificações por email", IsActive: true},
		{SettingKey: SettingSMSNotifications, SettingValue: "false", Description: "Ativar notificações por SMS", IsActive: true},
		{SettingKey: SettingMaintenanceMode, SettingValue: "false", Description: "Modo de manutenção", IsActive: true},
	}
}
