package health

import (
	"fmt"

	"github.com/kafaat/sahool-sensors/internal/domain"
	"github.com/kafaat/sahool-sensors/internal/stats"
)

// annotate fills alerts and bilingual recommendations from the measured
// values and, where defined, the matching threshold catalog entry. Order is
// deterministic for a given health value.
func (e *Evaluator) annotate(h *domain.SensorHealth, sorted []domain.SensorReading) {
	if h.DataQualityScore < warningQuality {
		h.Alerts = append(h.Alerts,
			fmt.Sprintf("Data quality score %.2f is below acceptable level", h.DataQualityScore))
	}
	if h.UptimePercentage < warningUptime {
		h.Alerts = append(h.Alerts,
			fmt.Sprintf("Uptime %.2f%% is below expected (%d of %d readings)",
				h.UptimePercentage, h.ReadingsCount24h, h.ExpectedReadings24h))
		recommend(h,
			"تحقق من اتصال الجهاز وجدول الإرسال",
			"Check device connectivity and its reporting schedule")
	}
	if h.DriftDetected && h.DriftMagnitude != nil {
		h.Alerts = append(h.Alerts,
			fmt.Sprintf("Sensor drift detected: %.2f%% baseline change", *h.DriftMagnitude))
		recommend(h,
			"أعد معايرة المستشعر أو استبدله إذا استمر الانحراف",
			"Recalibrate the sensor, or replace it if drift persists")
	}
	if h.OutlierPercentage > warningOutlier {
		h.Alerts = append(h.Alerts,
			fmt.Sprintf("Outlier rate %.2f%% exceeds %.0f%%", h.OutlierPercentage, warningOutlier))
	}
	if h.BatteryLevel != nil && *h.BatteryLevel < lowBatteryLevel {
		h.Alerts = append(h.Alerts, fmt.Sprintf("Low battery: %.1f%%", *h.BatteryLevel))
		recommend(h,
			"استبدل بطارية الجهاز أو أعد شحنها",
			"Replace or recharge the device battery")
	}
	if h.SignalStrength != nil && *h.SignalStrength < weakSignalLevel {
		h.Alerts = append(h.Alerts, fmt.Sprintf("Weak signal: %.0f dBm", *h.SignalStrength))
		recommend(h,
			"تحقق من موقع الجهاز أو أضف مقوي إشارة",
			"Check device placement or add a signal repeater")
	}

	e.adviseOnRange(h, sorted)
}

// adviseOnRange compares the window mean against the catalog range for the
// sensor type and adds agronomic advice when it sits outside.
func (e *Evaluator) adviseOnRange(h *domain.SensorHealth, sorted []domain.SensorReading) {
	entry, ok := e.catalog.Lookup(h.SensorType)
	if !ok || len(sorted) == 0 {
		return
	}

	values := make([]float64, len(sorted))
	for i, r := range sorted {
		values[i] = r.Value
	}
	mean := stats.Round2(stats.Mean(values))

	switch {
	case mean < entry.MinValue:
		h.Alerts = append(h.Alerts,
			fmt.Sprintf("Average %s %.2f is below the recommended range (%s)",
				h.SensorType, mean, entry.RangeString()))
		ar, en := lowAdvice(h.SensorType, entry.RangeString())
		recommend(h, ar, en)
	case mean > entry.MaxValue:
		h.Alerts = append(h.Alerts,
			fmt.Sprintf("Average %s %.2f is above the recommended range (%s)",
				h.SensorType, mean, entry.RangeString()))
		ar, en := highAdvice(h.SensorType, entry.RangeString())
		recommend(h, ar, en)
	}
}

func lowAdvice(sensorType, rangeStr string) (ar, en string) {
	switch sensorType {
	case "soil_moisture":
		return "قم بزيادة الري للحفاظ على رطوبة التربة ضمن النطاق الموصى به",
			"Increase irrigation to keep soil moisture within the recommended range"
	case "ph":
		return "أضف الجير الزراعي لرفع حموضة التربة إلى النطاق الموصى به",
			"Apply agricultural lime to raise soil pH into the recommended range"
	case "temperature", "soil_temperature":
		return "راقب خطر الصقيع واتخذ إجراءات حماية المحصول",
			"Monitor frost risk and take crop protection measures"
	}
	return fmt.Sprintf("القراءات أقل من النطاق الموصى به (%s)؛ افحص المستشعر وظروف الحقل", rangeStr),
		fmt.Sprintf("Readings are below the recommended range (%s); inspect the sensor and field conditions", rangeStr)
}

func highAdvice(sensorType, rangeStr string) (ar, en string) {
	switch sensorType {
	case "soil_moisture":
		return "قلل الري وتحقق من تصريف التربة",
			"Reduce irrigation and check soil drainage"
	case "salinity":
		return "اغسل التربة بمياه منخفضة الملوحة وراجع جودة مياه الري",
			"Leach the soil with low-salinity water and review irrigation water quality"
	case "ph":
		return "أضف الكبريت الزراعي لخفض حموضة التربة إلى النطاق الموصى به",
			"Apply agricultural sulfur to lower soil pH into the recommended range"
	case "temperature", "soil_temperature":
		return "وفّر التظليل أو زد الري لخفض الإجهاد الحراري",
			"Provide shading or increase irrigation to reduce heat stress"
	}
	return fmt.Sprintf("القراءات أعلى من النطاق الموصى به (%s)؛ افحص المستشعر وظروف الحقل", rangeStr),
		fmt.Sprintf("Readings are above the recommended range (%s); inspect the sensor and field conditions", rangeStr)
}

func recommend(h *domain.SensorHealth, ar, en string) {
	h.RecommendationsAr = append(h.RecommendationsAr, ar)
	h.RecommendationsEn = append(h.RecommendationsEn, en)
}
