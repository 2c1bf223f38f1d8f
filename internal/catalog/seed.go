package catalog

import (
	"context"
	"errors"
	"fmt"

	"catalogservice/internal/platform/observability"

	"go.uber.org/zap"
)

// InitialProducts is the catalog inserted into an empty store on startup.
// Ids are assigned in slice order starting at 1.
var InitialProducts = []Product{
	{Name: "Laptop", URL: "https://alza-products.cz/laptop-url", Price: 999.99, Description: "Powerful laptop", StockQuantity: 10},
	{Name: "Mouse", URL: "https://alza-products.cz/mouse-url", Price: 29.99, Description: "Wireless mouse", StockQuantity: 50},
	{Name: "Keyboard", URL: "https://alza-products.cz/keyboard-url", Price: 59.99, Description: "Mechanical keyboard", StockQuantity: 25},
	{Name: "Webcam", URL: "https://alza-products.cz/webcam-url", Price: 49.99, Description: "Webcam for streaming", StockQuantity: 5},
	{Name: "Headphones", URL: "https://alza-products.cz/headphones-anc", Price: 149.99, Description: "Over-ear headphones with ANC", StockQuantity: 30},
	{Name: "Monitor 24\"", URL: "https://alza-products.cz/monitor-24-inch-1080p", Price: 179.99, Description: "24\" 1080p IPS monitor", StockQuantity: 18},
	{Name: "USB-C Cable 1m", URL: "https://alza-products.cz/usb-c-cable-1m", Price: 9.99, Description: "USB-C to USB-C 60W cable", StockQuantity: 120},
	{Name: "Charger 65W", URL: "https://alza-products.cz/charger-65w", Price: 34.99, Description: "GaN fast charger 65W", StockQuantity: 60},
	{Name: "Desk Lamp", URL: "https://alza-products.cz/vdesk-lamp-led", Price: 24.99, Description: "LED desk lamp with dimmer", StockQuantity: 40},
	{Name: "Bluetooth Speaker", URL: "https://alza-products.cz/bluetooth-speaker", Price: 79.99, Description: "Portable waterproof speaker", StockQuantity: 22},
	{Name: "Microphone USB", URL: "https://alza-products.cz/usb-microphone", Price: 89.99, Description: "Condenser USB microphone", StockQuantity: 16},
	{Name: "SSD 1TB", URL: "https://alza-products.cz/ssd-1tb", Price: 89.99, Description: "NVMe SSD 1TB", StockQuantity: 28},
	{Name: "HDD 2TB", URL: "https://alza-products.cz/hdd-2tb", Price: 64.99, Description: "3.5\" HDD 2TB", StockQuantity: 35},
	{Name: "GPU RTX 4070", URL: "https://alza-products.cz/gpu-rtx-4070", Price: 599, Description: "Graphics card RTX 4070", StockQuantity: 8},
	{Name: "CPU Ryzen 7", URL: "https://alza-products.cz/cpu-ryzen-7", Price: 329, Description: "8-core desktop processor", StockQuantity: 12},
	{Name: "Motherboard ATX", URL: "https://alza-products.cz/motherboard-atx", Price: 169, Description: "ATX board with Wi-Fi", StockQuantity: 14},
	{Name: "RAM 32GB (2x16)", URL: "https://alza-products.cz/ram-32gb-3200", Price: 89, Description: "DDR4 32GB 3200MHz kit", StockQuantity: 26},
	{Name: "PC Case", URL: "https://alza-products.cz/pc-case-atx", Price: 79, Description: "ATX mid-tower case", StockQuantity: 20},
	{Name: "Power Supply 750W", URL: "https://alza-products.cz/psu-750w-gold", Price: 119, Description: "750W 80+ Gold PSU", StockQuantity: 15},
	{Name: "Wi-Fi Router AX", URL: "https://alza-products.cz/wifi-router-ax", Price: 139, Description: "Wi-Fi 6 gigabit router", StockQuantity: 19},
	{Name: "Webcam 4K", URL: "https://alza-products.cz/webcam-4k", Price: 129, Description: "4K autofocus webcam", StockQuantity: 9},
	{Name: "Gaming Mouse", URL: "https://alza-products.cz/gaming-mouse", Price: 49, Description: "Ergonomic RGB gaming mouse", StockQuantity: 45},
	{Name: "Mechanical Keyboard Pro", URL: "https://alza-products.cz/mechanical-keyboard-pro", Price: 129, Description: "Hot-swap mechanical keyboard", StockQuantity: 17},
	{Name: "Portable SSD 2TB", URL: "https://alza-products.cz/portable-ssd-2tb", Price: 159, Description: "USB-C portable SSD 2TB", StockQuantity: 21},
	{Name: "NVMe Enclosure", URL: "https://alza-products.cz/nvme-enclosure-usbc", Price: 29, Description: "USB-C NVMe enclosure", StockQuantity: 55},
	{Name: "Thunderbolt Dock", URL: "https://alza-products.cz/thunderbolt-dock", Price: 249, Description: "TB4 dock with power", StockQuantity: 7},
	{Name: "HDMI Cable 2m", URL: "https://alza-products.cz/hdmi-cable-2m", Price: 12, Description: "UltraHD HDMI 2.1 cable 2m", StockQuantity: 100},
	{Name: "DisplayPort Cable 2m", URL: "https://alza-products.cz/displayport-cable-2m", Price: 12, Description: "DP 1.4 cable 2m", StockQuantity: 90},
	{Name: "External HDD 4TB", URL: "https://alza-products.cz/external-hdd-4tb", Price: 109, Description: "USB 3.2 external HDD", StockQuantity: 23},
	{Name: "Gaming Headset", URL: "https://alza-products.cz/gaming-headset", Price: 79, Description: "Surround gaming headset", StockQuantity: 32},
	{Name: "Soundbar", URL: "https://alza-products.cz/soundbar", Price: 199, Description: "2.1ch TV soundbar", StockQuantity: 11},
	{Name: "Smart Plug", URL: "https://alza-products.cz/smart-plug", Price: 19, Description: "Wi-Fi smart plug", StockQuantity: 75},
	{Name: "USB Hub 7-Port", URL: "https://alza-products.cz/usb-hub-7-port", Price: 24, Description: "Powered USB 3.0 hub", StockQuantity: 50},
	{Name: "Wireless Charger", URL: "https://alza-products.cz/wireless-charger", Price: 29, Description: "15W Qi wireless charger", StockQuantity: 48},
	{Name: "Laptop Stand", URL: "https://alza-products.cz/laptop-stand", Price: 34, Description: "Aluminum adjustable stand", StockQuantity: 38},
	{Name: "Action Camera", URL: "https://alza-products.cz/action-camera-4k", Price: 249, Description: "4K action cam with EIS", StockQuantity: 13},
	{Name: "Tripod", URL: "https://alza-products.cz/camera-tripod", Price: 39, Description: "Aluminum camera tripod", StockQuantity: 27},
	{Name: "LED Strip 5m", URL: "https://alza-products.cz/led-strip-5m", Price: 22, Description: "RGB LED strip 5m", StockQuantity: 60},
	{Name: "SD Card 256GB", URL: "https://alza-products.cz/sd-card-256gb", Price: 29, Description: "UHS-I U3 V30 SD card", StockQuantity: 80},
	{Name: "Drone", URL: "https://alza-products.cz/camera-drone", Price: 599, Description: "4K camera drone", StockQuantity: 6},
}

// Seed inserts products when the repository is empty. A populated
// repository is left untouched.
func Seed(ctx context.Context, repo Repository, products []Product, logger observability.Logger) error {
	empty, err := repo.IsEmpty(ctx)
	if err != nil {
		return fmt.Errorf("failed to inspect catalog before seeding: %w", err)
	}
	if !empty {
		logger.Info("Catalog already populated, skipping seed")
		return nil
	}

	for _, p := range products {
		if _, err := repo.Create(ctx, p); err != nil {
			if errors.Is(err, ErrDuplicateName) {
				continue
			}
			return fmt.Errorf("failed to seed product %q: %w", p.Name, err)
		}
	}

	logger.Info("🌱 Catalog seeded", zap.Int("products", len(products)))
	return nil
}
