package flags

// ESP32KindClassic is the original ESP32, which is short on IRAM.
const ESP32KindClassic = "esp32"

// LinkFlags returns the extra linker flags for an ESP32 variant. On the
// classic ESP32 the auxiliary SPI flash chip drivers are wrapped by stubs
// (src/platform/esp32/iram-quirk.c) to free IRAM; newer chips link newlib
// nano with float printf.
func LinkFlags(esp32Kind string) []string {
	if esp32Kind == ESP32KindClassic {
		return []string{
			"-Wl,--wrap=esp_flash_chip_gd",
			"-Wl,--wrap=esp_flash_chip_issi",
			"-Wl,--wrap=esp_flash_chip_winbond",
		}
	}
	return []string{"--specs=nano.specs", "-u", "_printf_float"}
}
