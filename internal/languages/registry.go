package languages

// Entry — язык в списке выбора: отображаемое имя и ISO-код.
type Entry struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// 22 языка из восьмого списка конституции Индии. Порядок фиксирован:
// по нему строятся селекторы и индексы по умолчанию.
var registry = []Entry{
	{Name: "Hindi", Code: "hi"},
	{Name: "Bengali", Code: "bn"},
	{Name: "Marathi", Code: "mr"},
	{Name: "Telugu", Code: "te"},
	{Name: "Tamil", Code: "ta"},
	{Name: "Gujarati", Code: "gu"},
	{Name: "Urdu", Code: "ur"},
	{Name: "Kannada", Code: "kn"},
	{Name: "Odia", Code: "or"},
	{Name: "Malayalam", Code: "ml"},
	{Name: "Punjabi", Code: "pa"},
	{Name: "Assamese", Code: "as"},
	{Name: "Maithili", Code: "mai"},
	{Name: "Santali", Code: "sat"},
	{Name: "Kashmiri", Code: "ks"},
	{Name: "Nepali", Code: "ne"},
	{Name: "Konkani", Code: "kok"},
	{Name: "Sindhi", Code: "sd"},
	{Name: "Dogri", Code: "doi"},
	{Name: "Manipuri", Code: "mni"},
	{Name: "Bodo", Code: "brx"},
	{Name: "Sanskrit", Code: "sa"},
}

const (
	defaultSourceIndex = 0  // Hindi
	defaultTargetIndex = 12 // Maithili
)

var byName = func() map[string]string {
	m := make(map[string]string, len(registry))
	for _, e := range registry {
		m[e.Name] = e.Code
	}
	return m
}()

// All возвращает копию списка, чтобы вызывающий не мог испортить реестр.
func All() []Entry {
	out := make([]Entry, len(registry))
	copy(out, registry)
	return out
}

func Names() []string {
	out := make([]string, 0, len(registry))
	for _, e := range registry {
		out = append(out, e.Name)
	}
	return out
}

// Code ищет ISO-код по отображаемому имени. Для имён из Names() всегда ok.
func Code(name string) (string, bool) {
	code, ok := byName[name]
	return code, ok
}

func Valid(name string) bool {
	_, ok := byName[name]
	return ok
}

func DefaultSource() string { return registry[defaultSourceIndex].Name }
func DefaultTarget() string { return registry[defaultTargetIndex].Name }

// TranscriptionHint — код для подсказки STT. Whisper принимает только ISO 639-1,
// поэтому трёхбуквенные коды не передаём, сервис определит язык сам.
func TranscriptionHint(code string) string {
	if len(code) == 2 {
		return code
	}
	return ""
}
