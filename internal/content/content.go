// Package content holds the static help text returned by the print routes.
package content

import "fmt"

type Step struct {
	Step   int    `json:"step"`
	Action string `json:"action"`
}

type Guide struct {
	Title                string   `json:"title"`
	Steps                []Step   `json:"steps"`
	WhyOurPrintsDontShow string   `json:"whyOurPrintsDontShow"`
	APICalls             []string `json:"apiCalls"`
}

var HowToPrint = Guide{
	Title: "How to get print on your Star printer",
	Steps: []Step{
		{Step: 1, Action: "On the Clover device that is connected to your Star printer (same Wi-Fi or network), open the Printers app."},
		{Step: 2, Action: "In Printers app: Add or select Order Printer (or Kitchen Printer) and choose your Star SP700 or Star TSP100. Make sure it shows as connected."},
		{Step: 3, Action: `On the same Clover device: Go to Setup > Online Ordering > Settings. Set "Remote firing device for Clover online ordering" to THIS device. Save.`},
		{Step: 4, Action: "Keep that Clover device powered on and connected to the internet."},
		{Step: 5, Action: `Send a test print: POST /test-print with body { "tryAllDevices": true }. This sends the print to every Clover device; the one that has your Star as Order Printer should print.`},
		{Step: 6, Action: `If still no print: Call GET /test-print/devices, copy each device id, and try POST /test-print with body { "deviceId": "<paste-one-id>" } for each id until one prints.`},
	},
	WhyOurPrintsDontShow: "Uber Eats and DoorDash use Clover Online Ordering; their orders have an order type that routes to the Remote firing device. Our API-created orders need the same order type.",
	APICalls: []string{
		"GET /test-print/order-types  ->  list order types; pick the one used for Online Order / Delivery",
		`POST /test-print with body { "orderTypeId": "<id from order-types>" }  ->  create order like delivery so print routes same`,
		`POST /test-print with body { "tryAllDevices": true }  ->  send print to all Clover devices`,
		`POST /test-print with body { "deviceId": "<uuid>" }  ->  send print to one device`,
		`POST /test-print/send-print with body { "orderId": "<id>", "tryAllDevices": true }  ->  re-send print for existing order`,
		`POST /test-print/debug-print with body { "orderId": "<id>" }  ->  print, wait, re-check state and explain the outcome`,
	},
}

type Troubleshooting struct {
	WhyThirdPartyWorks string `json:"whyThirdPartyWorks,omitempty"`
	Step1              string `json:"step1"`
	Step2              string `json:"step2"`
	Step3              string `json:"step3,omitempty"`
	Step4              string `json:"step4,omitempty"`
}

// NoPrint is returned after a fresh order was printed.
func NoPrint(orderID string) Troubleshooting {
	return Troubleshooting{
		WhyThirdPartyWorks: `Uber Eats and DoorDash orders use Clover Online Ordering and print to the "Remote firing device" (Setup > Online Ordering > Settings). Our API-created orders must use the same path.`,
		Step1:              `Use same order type as delivery: GET /test-print/order-types, then POST /test-print with body { "orderTypeId": "<id of Online Order / Take Out / Delivery>" } so prints route like Uber Eats/DoorDash.`,
		Step2:              `Try all devices: POST /test-print with body { "tryAllDevices": true } to send print to every Clover device (one has your Star printer).`,
		Step3:              `On Clover device: Printers app > set Order Printer to Star SP700/TSP100. Setup > Online Ordering > Settings > set "Remote firing device" to THIS device.`,
		Step4:              fmt.Sprintf(`Re-send print: POST /test-print/send-print with body { "orderId": "%s", "tryAllDevices": true } or use deviceId from GET /test-print/devices.`, orderID),
	}
}

// SendPrintNoPrint is returned after an existing order was re-sent.
func SendPrintNoPrint(orderID string) Troubleshooting {
	return Troubleshooting{
		Step1: "Set Default Firing Device: Setup > Online Ordering > Settings on Clover device.",
		Step2: fmt.Sprintf(`Try all devices: POST /test-print/send-print with body { "orderId": "%s", "tryAllDevices": true }.`, orderID),
	}
}
